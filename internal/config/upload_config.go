package config

type UploadConfig interface {
	GetMaxDocumentSize() int64
	GetMaxLogoSize() int64
	GetDocumentTypes() []string
	GetLogoTypes() []string
}

type Upload struct{}

var _ UploadConfig = Upload{}

const megabyte = 1024 * 1024

func (Upload) GetMaxDocumentSize() int64 {
	return int64(GetEnvInt("MAX_DOCUMENT_MB", 10)) * megabyte
}

func (Upload) GetMaxLogoSize() int64 {
	return int64(GetEnvInt("MAX_LOGO_MB", 2)) * megabyte
}

func (Upload) GetDocumentTypes() []string {
	return []string{"image/jpeg", "image/png", "application/pdf"}
}

func (Upload) GetLogoTypes() []string {
	return []string{"image/jpeg", "image/png", "image/svg+xml"}
}
