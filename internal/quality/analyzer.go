// Package quality scores document image sharpness, exposure and framing
// from the greyscale pixel plane.
package quality

import (
	"context"
	"image"
	"log/slog"
	"math"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/imaging"
)

// borderMarginRatio places the inner sampled line at 5% of the smaller side.
const borderMarginRatio = 0.05

// Config holds the tunable thresholds of the analyzer.
type Config struct {
	// BlurVarianceThreshold: Laplacian variance below this marks the image as blurry.
	BlurVarianceThreshold float64
	// CropEdgeDensityThreshold: mean border edge magnitude below this marks a likely crop.
	CropEdgeDensityThreshold float64
}

// DefaultConfig returns the documented heuristic thresholds.
func DefaultConfig() Config {
	t := domain.DefaultThresholds()
	return Config{
		BlurVarianceThreshold:    t.BlurVarianceThreshold,
		CropEdgeDensityThreshold: t.CropEdgeDensityThreshold,
	}
}

// Analyzer is stateless and safe for concurrent use.
type Analyzer struct {
	config Config
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger discards output.
func NewAnalyzer(config Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{config: config, logger: logger}
}

// Analyze never fails: undecodable or oversized input yields the zero ImageQuality.
func (a *Analyzer) Analyze(ctx context.Context, imageBytes []byte) domain.ImageQuality {
	if ctx.Err() != nil {
		return domain.ImageQuality{}
	}

	img, format, err := imaging.Decode(imageBytes)
	if err != nil {
		a.logger.DebugContext(ctx, "image quality: decode failed",
			slog.Int("size", len(imageBytes)),
			slog.Any("error", err),
		)
		return domain.ImageQuality{}
	}

	a.logger.DebugContext(ctx, "image quality: decoded", slog.String("format", format))
	return a.AnalyzeImage(ctx, img)
}

// AnalyzeImage scores an image the caller already decoded with imaging.Decode.
func (a *Analyzer) AnalyzeImage(ctx context.Context, img image.Image) domain.ImageQuality {
	if ctx.Err() != nil || img == nil {
		return domain.ImageQuality{}
	}

	plane := imaging.Gray(img)
	result := a.AnalyzePlane(plane)

	a.logger.DebugContext(ctx, "image quality analyzed",
		slog.Int("width", plane.Width),
		slog.Int("height", plane.Height),
		slog.Bool("blur_likely", result.BlurLikely),
		slog.Bool("crop_likely", result.CropLikely),
	)

	return result
}

// AnalyzePlane runs the heuristics on an already decoded plane.
func (a *Analyzer) AnalyzePlane(plane imaging.GrayPlane) domain.ImageQuality {
	if plane.Width <= 0 || plane.Height <= 0 || len(plane.Pix) < plane.Width*plane.Height {
		return domain.ImageQuality{}
	}

	result := domain.ImageQuality{
		Width:  plane.Width,
		Height: plane.Height,
	}

	if variance, ok := laplacianVariance(plane); ok {
		result.BlurScore = &variance
		result.BlurLikely = variance < a.config.BlurVarianceThreshold
	}

	brightness, contrast := exposure(plane)
	result.Brightness = &brightness
	result.Contrast = &contrast

	result.CropLikely = borderEdgeDensity(plane) < a.config.CropEdgeDensityThreshold

	return result
}

// laplacianVariance convolves [0,1,0;1,-4,1;0,1,0] over the interior and
// returns E[x^2] - E[x]^2 of the responses. ok is false when the image has
// no interior pixels.
func laplacianVariance(p imaging.GrayPlane) (float64, bool) {
	if p.Width < 3 || p.Height < 3 {
		return 0, false
	}

	var sum, sumSq float64
	for y := 1; y < p.Height-1; y++ {
		for x := 1; x < p.Width-1; x++ {
			v := float64(p.At(x, y-1)) + float64(p.At(x-1, y)) +
				float64(p.At(x+1, y)) + float64(p.At(x, y+1)) -
				4*float64(p.At(x, y))
			sum += v
			sumSq += v * v
		}
	}

	n := float64((p.Width - 2) * (p.Height - 2))
	mean := sum / n
	return math.Max(sumSq/n-mean*mean, 0), true
}

// exposure returns brightness (mean/255) and contrast (stddev/128), both
// clamped to [0,1].
func exposure(p imaging.GrayPlane) (brightness, contrast float64) {
	n := float64(p.Width * p.Height)

	var sum, sumSq float64
	for _, v := range p.Pix[:p.Width*p.Height] {
		f := float64(v)
		sum += f
		sumSq += f * f
	}

	mean := sum / n
	variance := math.Max(sumSq/n-mean*mean, 0)

	brightness = domain.Clamp(mean/255, 0, 1)
	contrast = domain.Clamp(math.Sqrt(variance)/128, 0, 1)
	return brightness, contrast
}

// borderEdgeDensity averages |c-right| + |c-down| over pixel lines sampled
// near each border. Out of bounds neighbours take the centre value.
func borderEdgeDensity(p imaging.GrayPlane) float64 {
	margin := int(borderMarginRatio * float64(min(p.Width, p.Height)))

	rows := borderLines(p.Height, margin)
	cols := borderLines(p.Width, margin)

	var total float64
	var samples int

	for _, y := range rows {
		for x := 0; x < p.Width; x++ {
			total += edgeMagnitude(p, x, y)
			samples++
		}
	}
	for _, x := range cols {
		for y := 0; y < p.Height; y++ {
			total += edgeMagnitude(p, x, y)
			samples++
		}
	}

	if samples == 0 {
		return 0
	}
	return total / float64(samples)
}

// borderLines returns the in-range indices of the first three lines, the
// margin line, and their mirrors from the far edge. On small images the
// margin line lands on one of the first three and is sampled twice; every
// entry of the fixed set carries the same weight.
func borderLines(size, margin int) []int {
	lines := make([]int, 0, 8)
	for _, i := range []int{0, 1, 2, margin, size - 1, size - 2, size - 3, size - 1 - margin} {
		if i >= 0 && i < size {
			lines = append(lines, i)
		}
	}
	return lines
}

func edgeMagnitude(p imaging.GrayPlane, x, y int) float64 {
	c := int(p.At(x, y))

	right, down := c, c
	if x+1 < p.Width {
		right = int(p.At(x+1, y))
	}
	if y+1 < p.Height {
		down = int(p.At(x, y+1))
	}

	return float64(abs(c-right) + abs(c-down))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
