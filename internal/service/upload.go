package service

import (
	"bytes"
	"io"
	"mime/multipart"
)

// Upload is one file submitted with a create or update request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func UploadFromFileHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func UploadFromBytes(filename, contentType string, data []byte) Upload {
	return Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
