package id

import (
	"crypto/md5"
	"io"

	"github.com/gofrs/uuid"
)

// UUIDFromString stable uuid derived from text, equal texts give equal ids
func UUIDFromString(text string) string {
	h := md5.New()
	io.WriteString(h, text)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}
