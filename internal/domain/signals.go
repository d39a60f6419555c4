package domain

// ImageQuality is the outcome of the greyscale quality heuristics.
// Score fields are nil when the image could not be decoded.
type ImageQuality struct {
	BlurScore  *float64 `json:"blur_score,omitempty"`
	BlurLikely bool     `json:"blur_likely"`
	Brightness *float64 `json:"brightness,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty"`
	CropLikely bool     `json:"crop_likely"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
}

// VideoLiveness is a low-confidence motion signal derived from the size of a
// video resource. MotionScore is nil when the resource could not be probed.
type VideoLiveness struct {
	MotionLikely  bool     `json:"motion_likely"`
	MotionScore   *float64 `json:"motion_score,omitempty"`
	ContentLength int64    `json:"content_length,omitempty"`
}

// BarcodeResult describes a machine-readable code found on the document image.
type BarcodeResult struct {
	Detected bool   `json:"detected"`
	Format   string `json:"format,omitempty"`
	Payload  string `json:"payload,omitempty"`
}

// Thresholds are the tunable cut-offs of the heuristic analyzers.
type Thresholds struct {
	BlurVarianceThreshold    float64 `json:"blur_variance_threshold"`
	CropEdgeDensityThreshold float64 `json:"crop_edge_density_threshold"`
	MotionSizeThresholdBytes int64   `json:"motion_size_threshold_bytes"`
}

// DefaultThresholds returns the documented heuristic defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlurVarianceThreshold:    50,
		CropEdgeDensityThreshold: 10,
		MotionSizeThresholdBytes: 100 * 1024,
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
