package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates the image is empty, too small, too large or in an unsupported format
	ErrInvalidImage = errors.New("invalid image for text detection")

	// ErrThrottled indicates Rekognition rejected the call because of rate limits
	ErrThrottled = errors.New("rekognition request throttled")
)
