package rekognition

// Config holds configuration for the AWS Rekognition text extractor
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string

	// MinLineConfidence drops detected lines below this confidence (0-100)
	MinLineConfidence float32
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:            "us-east-1",
		MinLineConfidence: 50,
	}
}
