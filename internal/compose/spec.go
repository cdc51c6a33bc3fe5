package compose

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"hookclip/internal/media/filtergraph"
	"hookclip/internal/textutil"
)

// Staged file names inside the engine workspace. The input order fixes the
// stream indices used in the filter graph.
const (
	videoFile   = "input.mp4"
	overlayFile = "overlay.png"
	audioFile   = "tts.wav"
	logoFile    = "logo.png"
	fontFile    = "font.otf"
	outputFile  = "output.mp4"

	videoStream   = "0"
	overlayStream = "1"
	audioStream   = "2"
	logoStream    = "3"
	finalLabel    = "final_v"
)

// Fade is a fade-out window in seconds.
type Fade struct {
	Start    float64
	Duration float64
}

// Spec is the computed layout for one composition. It is built fresh per job
// and never mutated afterwards.
type Spec struct {
	Strategy    Strategy
	Text        string
	Lines       int
	FrameWidth  int
	FrameHeight int
	LogoWidth   int
	LogoHeight  int
	LogoX       int
	LogoY       int
	Fade        *Fade
	TrimSeconds float64
	FilterGraph string
	Args        []string
}

// measurements are the probed values the measured strategy needs.
type measurements struct {
	width, height         int
	videoSeconds          float64
	audioSeconds          float64
	logoWidth, logoHeight int
}

func prepareText(caption string, layout Layout) string {
	return textutil.Wrap(textutil.HookCase(caption, layout.Language), layout.WrapChars)
}

func buildRelativeSpec(caption string, layout Layout) (Spec, error) {
	text := prepareText(caption, layout)
	g := filtergraph.New()
	g.Chain(overlayStream, videoStream).
		Filter("scale2ref", filtergraph.Opt("w", filtergraph.Expr("iw")), filtergraph.Opt("h", filtergraph.Expr("ih"))).
		To("ovl", "base")
	g.Chain("ovl").Filter("format", filtergraph.Opt("pix_fmts", filtergraph.Raw("rgba"))).To("ovla")
	g.Chain("base", "ovla").Filter("overlay", filtergraph.Opt("x", filtergraph.Int(0)), filtergraph.Opt("y", filtergraph.Int(0))).To("bg")
	g.Chain("bg").Filter("drawtext", drawTextOptions(text, layout)...).To("bgtext")
	g.Chain(logoStream, "bgtext").
		Filter("scale2ref",
			filtergraph.Opt("w", filtergraph.Expr("iw*"+formatFloat(layout.LogoWidthRatio))),
			filtergraph.Opt("h", filtergraph.Expr("ow/mdar")),
		).
		To("logo", "bgref")
	g.Chain("bgref", "logo").
		Filter("overlay",
			filtergraph.Opt("x", filtergraph.Expr(fmt.Sprintf("W-w-%d", layout.LogoMargin))),
			filtergraph.Opt("y", filtergraph.Expr("H*"+formatFloat(layout.LogoBottomRatio)+"-h")),
		).
		To(finalLabel)

	graph, err := g.Render()
	if err != nil {
		return Spec{}, err
	}
	spec := Spec{
		Strategy:    StrategyRelative,
		Text:        text,
		Lines:       lineCount(text),
		FilterGraph: graph,
	}
	spec.Args = encodeArgs(graph, layout.Encoding, 0)
	return spec, nil
}

func buildMeasuredSpec(caption string, layout Layout, m measurements) (Spec, error) {
	if m.width <= 0 || m.height <= 0 {
		return Spec{}, fmt.Errorf("video dimensions unavailable")
	}
	if m.logoWidth <= 0 || m.logoHeight <= 0 {
		return Spec{}, fmt.Errorf("logo dimensions unavailable")
	}
	text := prepareText(caption, layout)

	logoW := int(math.Round(float64(m.width) * layout.LogoWidthRatio))
	logoH := int(math.Round(float64(logoW) * float64(m.logoHeight) / float64(m.logoWidth)))
	logoX := m.width - logoW - layout.LogoMargin
	logoY := int(math.Round(float64(m.height)*layout.LogoBottomRatio)) - logoH

	var fade *Fade
	if layout.FadeSeconds > 0 && m.audioSeconds > 0 {
		fade = &Fade{Start: roundMillis(math.Max(0, m.audioSeconds-layout.FadeSeconds)), Duration: layout.FadeSeconds}
	}
	trim := trimSeconds(m.videoSeconds, m.audioSeconds)

	g := filtergraph.New()
	g.Chain(overlayStream).
		Filter("scale", filtergraph.Opt("w", filtergraph.Int(m.width)), filtergraph.Opt("h", filtergraph.Int(m.height))).
		Filter("format", filtergraph.Opt("pix_fmts", filtergraph.Raw("rgba"))).
		To("ovl")
	g.Chain(videoStream, "ovl").Filter("overlay", filtergraph.Opt("x", filtergraph.Int(0)), filtergraph.Opt("y", filtergraph.Int(0))).To("bg")
	g.Chain("bg").Filter("drawtext", drawTextOptions(text, layout)...).To("bgtext")
	g.Chain(logoStream).
		Filter("scale", filtergraph.Opt("w", filtergraph.Int(logoW)), filtergraph.Opt("h", filtergraph.Int(logoH))).
		To("logo")
	last := g.Chain("bgtext", "logo").
		Filter("overlay", filtergraph.Opt("x", filtergraph.Int(logoX)), filtergraph.Opt("y", filtergraph.Int(logoY)))
	if fade != nil {
		last.Filter("fade",
			filtergraph.Opt("t", filtergraph.Raw("out")),
			filtergraph.Opt("st", filtergraph.Float(fade.Start)),
			filtergraph.Opt("d", filtergraph.Float(fade.Duration)),
		)
	}
	last.To(finalLabel)

	graph, err := g.Render()
	if err != nil {
		return Spec{}, err
	}
	spec := Spec{
		Strategy:    StrategyMeasured,
		Text:        text,
		Lines:       lineCount(text),
		FrameWidth:  m.width,
		FrameHeight: m.height,
		LogoWidth:   logoW,
		LogoHeight:  logoH,
		LogoX:       logoX,
		LogoY:       logoY,
		Fade:        fade,
		TrimSeconds: trim,
		FilterGraph: graph,
	}
	spec.Args = encodeArgs(graph, layout.Encoding, trim)
	return spec, nil
}

func drawTextOptions(text string, layout Layout) []filtergraph.Option {
	return []filtergraph.Option{
		filtergraph.Opt("fontfile", filtergraph.Raw(fontFile)),
		filtergraph.Opt("expansion", filtergraph.Raw("none")),
		filtergraph.Opt("text", filtergraph.Text(text)),
		filtergraph.Opt("fontsize", filtergraph.Int(layout.FontSize)),
		filtergraph.Opt("fontcolor", filtergraph.Raw(layout.FontColor)),
		filtergraph.Opt("borderw", filtergraph.Int(layout.BorderWidth)),
		filtergraph.Opt("bordercolor", filtergraph.Raw(layout.BorderColor)),
		filtergraph.Opt("line_spacing", filtergraph.Int(layout.LineSpacing)),
		filtergraph.Opt("x", filtergraph.Expr("(w-text_w)/2")),
		filtergraph.Opt("y", filtergraph.Expr("(h-text_h)*"+formatFloat(layout.TextYRatio))),
		filtergraph.Opt("text_shaping", filtergraph.Int(1)),
	}
}

// encodeArgs lists inputs, graph, mapping and codec flags. A zero trim falls
// back to -shortest.
func encodeArgs(graph string, enc Encoding, trim float64) []string {
	args := []string{
		"-i", videoFile,
		"-i", overlayFile,
		"-i", audioFile,
		"-i", logoFile,
		"-filter_complex", graph,
		"-map", "[" + finalLabel + "]",
		"-map", audioStream + ":a",
		"-c:v", enc.VideoCodec,
	}
	if enc.Preset != "" {
		args = append(args, "-preset", enc.Preset)
	}
	if enc.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(enc.CRF))
	}
	args = append(args, "-c:a", enc.AudioCodec)
	if enc.AudioBitrate != "" {
		args = append(args, "-b:a", enc.AudioBitrate)
	}
	if enc.PixelFormat != "" {
		args = append(args, "-pix_fmt", enc.PixelFormat)
	}
	args = append(args, "-movflags", "+faststart")
	if trim > 0 {
		args = append(args, "-t", formatFloat(trim))
	} else {
		args = append(args, "-shortest")
	}
	return args
}

func trimSeconds(video, audio float64) float64 {
	switch {
	case video > 0 && audio > 0:
		return roundMillis(math.Min(video, audio))
	case audio > 0:
		return roundMillis(audio)
	default:
		return roundMillis(video)
	}
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
