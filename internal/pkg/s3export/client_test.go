package s3export

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	headErr error
	created []string
	puts    []*s3.PutObjectInput
	bodies  [][]byte
}

func (f *fakeS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, aws.ToString(params.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestReportObjectKey(t *testing.T) {
	key, err := ReportObjectKey("2024-02", "monthly-2024-02.csv")
	require.NoError(t, err)
	assert.Equal(t, "reports/2024/02/monthly-2024-02.csv", key)

	_, err = ReportObjectKey("02/2024", "x.csv")
	assert.Error(t, err)
}

func TestUploadReport(t *testing.T) {
	fake := &fakeS3{}
	c := &Client{s3Client: fake, config: &Config{BucketName: "reports-bucket", Enabled: true}}

	res, err := c.UploadReport(context.Background(), "2024-02", "monthly.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "reports-bucket", res.BucketName)
	assert.Equal(t, "reports/2024/02/monthly.csv", res.ObjectKey)
	assert.Equal(t, int64(4), res.Size)
	assert.Equal(t, "text/csv", res.ContentType)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "2024-02", fake.puts[0].Metadata["month-year"])
	assert.Equal(t, "a,b\n", string(fake.bodies[0]))
}

func TestTestConnection_CreatesBucketOutsideProd(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	fake := &fakeS3{headErr: errors.New("not found")}
	c := &Client{s3Client: fake, config: &Config{BucketName: "dev-bucket", Region: "us-east-1"}}

	require.NoError(t, c.testConnection(context.Background()))
	assert.Equal(t, []string{"dev-bucket"}, fake.created)

	t.Setenv("APP_ENV", "prod")
	assert.Error(t, c.testConnection(context.Background()))
}

func TestNewClient_Disabled(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Enabled: false})
	assert.Error(t, err)
}
