// Command edgetest builds an edge map from a photo and writes it out as PNG.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"pose-gate/internal/edgemap"
	"pose-gate/internal/imageutil"
)

func main() {
	inputPath := flag.String("input", "", "Path to input image")
	outputPath := flag.String("output", "edges.png", "Path to write the edge map PNG")
	highPercentile := flag.Float64("high-percentile", 0, "Override high threshold percentile (0 = default)")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: edgetest -input <image> [-output <png>] [-high-percentile <0..1>]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}
	img, format, err := imageutil.DecodeOriented(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode input: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Input: %s, %dx%d (%s)\n", *inputPath,
		img.Bounds().Dx(), img.Bounds().Dy(), format)

	params := edgemap.DefaultParams()
	if *highPercentile > 0 {
		params.HighPercentile = *highPercentile
	}

	edges, err := edgemap.Build(img, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Edge map failed: %v\n", err)
		os.Exit(2)
	}

	bounds := edges.Bounds()
	edgePixels := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if edges.GrayAt(x, y).Y < 128 {
				edgePixels++
			}
		}
	}
	total := bounds.Dx() * bounds.Dy()
	fmt.Printf("Edge density: %.2f%% (%d of %d pixels)\n",
		100*float64(edgePixels)/float64(total), edgePixels, total)

	out, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := png.Encode(out, edges); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outputPath)
}
