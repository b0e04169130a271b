package types

// UploadContext holds the four identifiers read from the widget query string.
// Values are passed through verbatim; an empty string is a valid value.
type UploadContext struct {
	Modul     string `json:"modul"`
	FirmaGuid string `json:"firmaGuid"`
	FisTurId  string `json:"fisTurId"`
	SatirGuid string `json:"satirGuid"`
}

// UploadResponse is the JSON body returned by the upload backend.
type UploadResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    *UploadResponseData `json:"data,omitempty"`
}

// UploadResponseData describes the stored file on success.
type UploadResponseData struct {
	Message      string `json:"message"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	MimeType     string `json:"mimeType"`
}

// UploadRequestQuery is bound from the query string of /upload and session creation.
type UploadRequestQuery struct {
	Modul     string `form:"modul"`
	FirmaGuid string `form:"firmaGuid"`
	FisTurId  string `form:"fisTurId"`
	SatirGuid string `form:"satirGuid"`
}

// Context converts the bound query into an UploadContext.
func (q UploadRequestQuery) Context() UploadContext {
	return UploadContext{
		Modul:     q.Modul,
		FirmaGuid: q.FirmaGuid,
		FisTurId:  q.FisTurId,
		SatirGuid: q.SatirGuid,
	}
}
