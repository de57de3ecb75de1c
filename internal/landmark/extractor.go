package landmark

import (
	"image"
	"log/slog"
	"os"
	"sync"

	"pose-gate/internal/imageutil"

	"gocv.io/x/gocv"
)

// Config configures the DNN pose extractor.
type Config struct {
	// ModelPath is the network weights file (.caffemodel or .onnx).
	ModelPath string `yaml:"model_path"`
	// ProtoPath is the network description for Caffe models. Empty for ONNX.
	ProtoPath string `yaml:"proto_path"`
	// InputSize is the square size images are letterboxed to before the
	// forward pass.
	InputSize int `yaml:"input_size"`
	// MinVisibility is the heatmap peak floor below which a part is treated
	// as undetected.
	MinVisibility float64 `yaml:"min_visibility"`
}

// DefaultConfig returns extractor defaults tuned for the BODY_25 model.
func DefaultConfig() Config {
	return Config{
		ModelPath:     "models/pose_body25.caffemodel",
		ProtoPath:     "models/pose_body25.prototxt",
		InputSize:     368,
		MinVisibility: 0.1,
	}
}

// Extractor detects body keypoints with an OpenPose-style heatmap network.
//
// Availability is decided once at construction: if the model cannot be
// loaded, the extractor is permanently unavailable and Extract returns
// (nil, nil) for every call, so callers have a single code path regardless
// of environment.
type Extractor struct {
	cfg       Config
	available bool

	// gocv networks are not safe for concurrent forward passes.
	mu  sync.Mutex
	net gocv.Net
}

// New constructs an Extractor. It never fails; a missing or unloadable
// model yields an unavailable extractor.
func New(cfg Config) *Extractor {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 368
	}
	e := &Extractor{cfg: cfg}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		slog.Warn("pose model not found, landmark extraction unavailable",
			"model", cfg.ModelPath, "error", err)
		return e
	}
	if cfg.ProtoPath != "" {
		if _, err := os.Stat(cfg.ProtoPath); err != nil {
			slog.Warn("pose model proto not found, landmark extraction unavailable",
				"proto", cfg.ProtoPath, "error", err)
			return e
		}
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ProtoPath)
	if net.Empty() {
		slog.Warn("pose model failed to load, landmark extraction unavailable",
			"model", cfg.ModelPath)
		return e
	}

	e.net = net
	e.available = true
	slog.Info("pose model loaded", "model", cfg.ModelPath, "input_size", cfg.InputSize)
	return e
}

// Available reports whether the pose model loaded at construction time.
func (e *Extractor) Available() bool {
	return e.available
}

// Close releases the network. Safe to call on an unavailable extractor.
func (e *Extractor) Close() error {
	if !e.available {
		return nil
	}
	e.available = false
	return e.net.Close()
}

// Extract runs pose detection on encoded image bytes and returns the
// detected landmark set. It returns (nil, nil) when the extractor is
// unavailable, the bytes do not decode, or no part clears the confidence
// floor. Callers treat all three identically as "no pose found".
func (e *Extractor) Extract(data []byte) (*Set, error) {
	if !e.available {
		return nil, nil
	}

	img, _, err := imageutil.DecodeOriented(data)
	if err != nil {
		// Malformed input is indistinguishable from "no pose" by contract.
		return nil, nil
	}

	mat, err := imageToMat(img)
	if err != nil {
		return nil, nil
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Point{X: e.cfg.InputSize, Y: e.cfg.InputSize},
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.mu.Lock()
	e.net.SetInput(blob, "")
	prob := e.net.Forward("")
	e.mu.Unlock()
	defer prob.Close()

	sizes := prob.Size()
	if len(sizes) < 4 {
		return nil, nil
	}
	heatH, heatW := sizes[2], sizes[3]
	if heatH == 0 || heatW == 0 {
		return nil, nil
	}

	found := make(map[Part]Landmark, int(partCount))
	for _, p := range Parts() {
		ch := heatmapChannel[p]
		if ch >= sizes[1] {
			continue
		}
		heat := gocv.GetBlobChannel(prob, 0, ch)
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(heat)
		heat.Close()

		if float64(maxVal) < e.cfg.MinVisibility {
			continue
		}
		found[p] = Landmark{
			X:          (float64(maxLoc.X) + 0.5) / float64(heatW),
			Y:          (float64(maxLoc.Y) + 0.5) / float64(heatH),
			Visibility: clamp01(float64(maxVal)),
		}
	}

	if len(found) == 0 {
		return nil, nil
	}
	return NewSet(found), nil
}

// imageToMat converts a Go image.Image to a BGR gocv.Mat.
func imageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
