package domain

// AssetCategory is the role tag assigned to an upload by the caller.
type AssetCategory string

const (
	AssetIDDocument AssetCategory = "id_document"
	AssetFacePhoto  AssetCategory = "face_photo"
	AssetFaceVideo  AssetCategory = "face_video"
)

// Asset is an uploaded file as seen by the analyzer.
type Asset struct {
	Category    AssetCategory `json:"category"`
	Name        string        `json:"name"`
	ContentType string        `json:"content_type,omitempty"`
	Size        int64         `json:"size,omitempty"`
}

// IsFace reports whether the asset can serve as the face sample.
func (a Asset) IsFace() bool {
	return a.Category == AssetFacePhoto || a.Category == AssetFaceVideo
}

// RiskLevel classifies a fraud risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// MaxRiskScore is the upper bound of FraudDetection.RiskScore.
const MaxRiskScore = 100

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a facial landmark position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FaceDetection confidence is in [0,1].
type FaceDetection struct {
	Detected    bool         `json:"detected"`
	Confidence  float64      `json:"confidence"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
	Landmarks   []Point      `json:"landmarks,omitempty"`
}

// DocumentValidation confidence and authenticity are in [0,1].
type DocumentValidation struct {
	IsValid           bool     `json:"is_valid"`
	DocumentType      string   `json:"document_type,omitempty"`
	Confidence        float64  `json:"confidence"`
	AuthenticityScore float64  `json:"authenticity_score"`
	Issues            []string `json:"issues,omitempty"`
}

type OCRResult struct {
	Text            string            `json:"text"`
	Confidence      float64           `json:"confidence"`
	ExtractedFields map[string]string `json:"extracted_fields,omitempty"`
}

// FraudDetection risk score is in [0,100].
type FraudDetection struct {
	RiskScore float64   `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Flags     []string  `json:"flags,omitempty"`
}

type LivenessCheck struct {
	IsLive     bool    `json:"is_live"`
	Confidence float64 `json:"confidence"`
}

// DocumentAnalysis overall confidence is in [0,100].
type DocumentAnalysis struct {
	FaceDetection      FaceDetection      `json:"face_detection"`
	DocumentValidation DocumentValidation `json:"document_validation"`
	OCR                OCRResult          `json:"ocr"`
	FraudDetection     FraudDetection     `json:"fraud_detection"`
	Liveness           LivenessCheck      `json:"liveness"`
	OverallConfidence  float64            `json:"overall_confidence"`
}

// FaceRecognition similarity is in [0,100].
type FaceRecognition struct {
	Similarity float64 `json:"similarity"`
	MatchFound bool    `json:"match_found"`
}

// FaceAnalysis overall confidence is in [0,100].
type FaceAnalysis struct {
	FaceDetection     FaceDetection   `json:"face_detection"`
	FaceRecognition   FaceRecognition `json:"face_recognition"`
	OverallConfidence float64         `json:"overall_confidence"`
}

// AnalysisResult is the combined document and face analysis of a request.
type AnalysisResult struct {
	DocumentAnalysis DocumentAnalysis `json:"document_analysis"`
	FaceAnalysis     FaceAnalysis     `json:"face_analysis"`
}
