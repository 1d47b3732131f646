package models

// Attachment is an uploaded file stored in blob storage and referenced by
// ID from payments, bills, purchase orders and vendors. The core treats it
// as an opaque reference; Key locates the object in storage and URL is the
// public address recorded at upload time.
type Attachment struct {
	Base     `bson:",inline"`
	Name     string `bson:"name" json:"name"`
	Key      string `bson:"key" json:"key"`
	MimeType string `bson:"mime_type" json:"mime_type"`
	URL      string `bson:"url" json:"url"`
}
