// Package binder decodes HTTP request bodies into Go values.
//
//	var req contact.Submission
//	if err := binder.JSON(r, &req, 64<<10); err != nil {
//		// every failure wraps ErrInvalidJSON, ErrBodyTooLarge,
//		// ErrMissingContentType or ErrUnsupportedMediaType
//	}
//
// Bodies are read through http.MaxBytesReader, so oversized uploads are cut
// off instead of buffered. Unknown fields are accepted; trailing data after
// the first JSON value is not.
package binder
