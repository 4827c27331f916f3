package export

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tbourn/go-onboarding-backend/internal/config"
	"github.com/tbourn/go-onboarding-backend/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// S3Exporter uploads a single-row workbook (header plus the new submission)
// to an S3-compatible object store under employees/<employeeId>.xlsx,
// overwriting any existing object with that key. Prior rows are not
// accumulated; each submission gets its own object.
type S3Exporter struct {
	Bucket string

	client *minio.Client
}

// NewS3Exporter builds an exporter from the s3 export configuration.
func NewS3Exporter(cfg config.ExportConfig) (*S3Exporter, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("export: s3 client: %w", err)
	}
	return &S3Exporter{Bucket: cfg.S3Bucket, client: client}, nil
}

// ObjectKey returns the destination key for a submission.
func ObjectKey(employeeID string) string {
	return "employees/" + employeeID + ".xlsx"
}

// Append builds the workbook in memory and uploads it.
func (e *S3Exporter) Append(ctx context.Context, s domain.Submission) error {
	f, err := BuildWorkbook([]domain.Submission{s})
	if err != nil {
		return fmt.Errorf("export: build workbook: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("export: encode workbook: %w", err)
	}

	_, err = e.client.PutObject(ctx, e.Bucket, ObjectKey(s.EmployeeID), buf, int64(buf.Len()),
		minio.PutObjectOptions{ContentType: xlsxContentType})
	if err != nil {
		return fmt.Errorf("export: upload %s: %w", ObjectKey(s.EmployeeID), err)
	}
	return nil
}
