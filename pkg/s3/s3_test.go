package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	s3manageriface.UploaderAPI
	input *s3manager.UploadInput
	body  []byte
	err   error
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(in.Key)}, nil
}

func TestUploadFile(t *testing.T) {
	up := &fakeUploader{}
	a := &Archiver{uploader: up, bucket: "vds"}

	loc, err := a.UploadFile(context.Background(), bytes.NewBufferString("pdf"), "reports/user1/VDS_Report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "https://bucket.s3.amazonaws.com/reports/user1/VDS_Report.pdf", loc)
	assert.Equal(t, "vds", aws.StringValue(up.input.Bucket))
	assert.Equal(t, "application/pdf", aws.StringValue(up.input.ContentType))
	assert.Equal(t, "pdf", string(up.body))
}

func TestUploadPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "clip.unknownext")
	require.NoError(t, os.WriteFile(p, []byte("video"), 0o644))

	up := &fakeUploader{}
	a := &Archiver{uploader: up, bucket: "vds"}
	_, err := a.UploadPath(context.Background(), p, "videos/clip.unknownext")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", aws.StringValue(up.input.ContentType))
	assert.Equal(t, "video", string(up.body))

	_, err = a.UploadPath(context.Background(), filepath.Join(t.TempDir(), "missing"), "k")
	assert.Error(t, err)
}

func TestUploadFileError(t *testing.T) {
	a := &Archiver{uploader: &fakeUploader{err: errors.New("denied")}, bucket: "vds"}
	_, err := a.UploadFile(context.Background(), bytes.NewBufferString("x"), "k")
	assert.ErrorContains(t, err, "denied")
}
