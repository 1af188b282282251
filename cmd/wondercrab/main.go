package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/kaishuu0123/wondercrab/internal/audio"
	"github.com/kaishuu0123/wondercrab/internal/gui"
	"github.com/kaishuu0123/wondercrab/internal/statsview"
	"github.com/kaishuu0123/wondercrab/internal/wavwriter"
	"github.com/kaishuu0123/wondercrab/wonderswan"
	"github.com/pkg/profile"
	"golang.org/x/image/draw"
)

const (
	modeNormal = ""
	modeMute   = "mute"
	modeTrace  = "trace"

	// longest emulated slice per host frame, so a stalled window does not
	// make the emulator race to catch up
	maxStepSeconds = 1.0 / 15
)

var (
	scale        = flag.Int("scale", 4, "window scale")
	wavPath      = flag.String("wav", "", "record mixed audio to a WAV file")
	profileMode  = flag.String("profile", "", "write a cpu or mem profile")
	useStatsview = flag.Bool("statsview", false, "serve runtime statistics on "+statsview.DefaultAddress)
	saveDir      = flag.String("savedir", "", "directory for save files (default: beside the ROM)")
)

var (
	console         *wonderswan.Console
	audioForConsole *audio.Audio
	recorder        *wavwriter.WavWriter
	traceOutput     *bufio.Writer
	isRunning       = false
	mode            = modeNormal
	rotated         = false
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [romPath] [mute|trace]\n", os.Args[0])
	flag.PrintDefaults()
}

func StartAudio() {
	if mode != modeNormal {
		return
	}
	audioForConsole = audio.NewAudio()
	if err := audioForConsole.Start(); err != nil {
		log.Printf("Audio: %v, running without sound\n", err)
		audioForConsole = nil
		return
	}

	console.SetAudioChannel(audioForConsole.Channel)
	console.SetAudioSampleRate(audioForConsole.SampleRate)
}

func StopAudio() {
	if audioForConsole == nil {
		return
	}
	if err := audioForConsole.Stop(); err != nil {
		log.Printf("Audio: %v\n", err)
	}
	audioForConsole = nil
	if console != nil {
		console.SetAudioSampleRate(0)
		console.SetAudioChannel(nil)
	}
}

func consoleOptions() []wonderswan.Option {
	opts := []wonderswan.Option{
		wonderswan.WithSaveDir(*saveDir),
		wonderswan.WithMute(mode != modeNormal),
	}
	if mode == modeTrace {
		traceOutput = bufio.NewWriterSize(os.Stderr, 1<<16)
		opts = append(opts, wonderswan.WithTrace(wonderswan.NewWriterTraceSink(traceOutput)))
	}
	return opts
}

func ResetConsole(fileName string) {
	StopAudio()
	closeConsole()
	isRunning = false

	log.Println("Reset Console")
	log.Printf("ROM file path: %s\n", fileName)
	var err error
	console, err = wonderswan.NewConsole(fileName, consoleOptions()...)
	if err != nil {
		log.Fatalln(err)
	}
	isRunning = true

	StartAudio()
}

func closeConsole() {
	if traceOutput != nil {
		traceOutput.Flush()
	}
	if console == nil {
		return
	}
	if err := console.Close(); err != nil {
		log.Printf("Close: %v\n", err)
	}
	console = nil
}

func onDrop(names []string) {
	if len(names) == 0 {
		return
	}
	ResetConsole(names[0])
}

func windowSize() (int, int) {
	w, h := wonderswan.ScreenWidth*(*scale), wonderswan.ScreenHeight*(*scale)
	if rotated {
		return h, w
	}
	return w, h
}

// rotate turns the frame 90 degrees counter-clockwise for games held
// vertically.
func rotate(dst, src *image.RGBA) {
	w := src.Rect.Dx()
	for y := 0; y < src.Rect.Dy(); y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			j := dst.PixOffset(y, w-1-x)
			copy(dst.Pix[j:j+4], src.Pix[i:i+4])
		}
	}
}

func renderGUI(w *gui.MasterWindow) {
	width, height := windowSize()
	w.Render(func() {
		if isRunning {
			imgui.BackgroundDrawList().
				AddImage(
					w.Frame(),
					imgui.Vec2{X: 0, Y: 0},
					imgui.Vec2{X: float32(width), Y: float32(height)},
				)
			return
		}
		msg := "WonderCrab is currently stopped.\n\nPlease drag and drop ROM file."
		textSize := imgui.CalcTextSize(msg, false, 0)
		xpos := (float32(width) - textSize.X) / 2
		ypos := (float32(height) - textSize.Y) / 2
		imgui.BackgroundDrawList().
			AddText(
				imgui.Vec2{X: xpos, Y: ypos},
				imgui.PackedColor(0xFFFFFFFF),
				msg,
			)
	})
}

func parseArgs() (string, error) {
	args := flag.Args()
	if len(args) > 2 {
		return "", errors.New("too many arguments")
	}
	if len(args) == 2 {
		switch args[1] {
		case modeMute, modeTrace:
			mode = args[1]
		default:
			return "", fmt.Errorf("unknown mode %q", args[1])
		}
	}
	if len(args) == 0 {
		return "", nil
	}
	return wonderswan.ResolveROMPath(args[0])
}

func main() {
	flag.Usage = usage
	flag.Parse()

	romPath, err := parseArgs()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Fatalln("no rom file specified or found:", err)
		}
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		log.Fatalf("unknown profile %q\n", *profileMode)
	}
	if *useStatsview {
		statsview.Launch(os.Stderr, statsview.DefaultAddress)
	}

	ResetConsole(romPath)
	defer closeConsole()
	defer StopAudio()

	if *wavPath != "" {
		recorder, err = wavwriter.New(*wavPath, wonderswan.SampleRate)
		if err != nil {
			log.Fatalln(err)
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Println(err)
			}
		}()
	}

	width, height := windowSize()
	window, err := gui.NewMasterWindow("WonderCrab", width, height)
	if err != nil {
		log.Fatalln(err)
	}
	defer window.Dispose()
	window.SetDropCallback(onDrop)

	if glfw.Joystick1.Present() {
		log.Printf("Joystick1 name: %s\n", glfw.Joystick1.GetName())
	}

	screenImage := image.NewRGBA(image.Rect(0, 0, width, height))
	rotatedFrame := image.NewRGBA(image.Rect(0, 0, wonderswan.ScreenHeight, wonderswan.ScreenWidth))
	rotateKey := false

	prevTimestamp := glfw.GetTime()
	for !window.Platform.ShouldStop() {
		curTimestamp := glfw.GetTime()
		window.Platform.ProcessEvents()

		if window.Platform.KeyPressed(glfw.KeyEscape) {
			window.Platform.Window.SetShouldClose(true)
		}
		pressed := window.Platform.KeyPressed(glfw.KeyR)
		if pressed && !rotateKey {
			rotated = !rotated
			width, height = windowSize()
			window.Platform.SetSize(width, height)
			screenImage = image.NewRGBA(image.Rect(0, 0, width, height))
		}
		rotateKey = pressed

		if isRunning {
			keys := processInput(window)
			joy := readJoyStick(glfw.Joystick1)
			console.SetButtons(combineButtons(keys, joy))
		}

		dt := curTimestamp - prevTimestamp
		prevTimestamp = curTimestamp
		if dt > maxStepSeconds {
			dt = maxStepSeconds
		}

		if isRunning {
			console.StepSeconds(dt)
			if recorder != nil {
				if err := recorder.Write(console.APU.Samples()); err != nil {
					log.Println(err)
					recorder = nil
				}
			}

			frame := console.Buffer()
			if rotated {
				rotate(rotatedFrame, frame)
				frame = rotatedFrame
			}
			draw.NearestNeighbor.Scale(screenImage, screenImage.Bounds(), frame, frame.Bounds(), draw.Src, nil)
			if err := window.UploadFrame(screenImage); err != nil {
				log.Fatalln(err)
			}
		}

		renderGUI(window)
	}
}

var keyMap = []struct {
	key    glfw.Key
	button int
}{
	{glfw.KeyA, wonderswan.ButtonY1},
	{glfw.KeyW, wonderswan.ButtonY2},
	{glfw.KeyD, wonderswan.ButtonY3},
	{glfw.KeyS, wonderswan.ButtonY4},
	{glfw.KeyU, wonderswan.ButtonX1},
	{glfw.KeyK, wonderswan.ButtonX2},
	{glfw.KeyJ, wonderswan.ButtonX3},
	{glfw.KeyH, wonderswan.ButtonX4},
	{glfw.KeyKP4, wonderswan.ButtonX1},
	{glfw.KeyKP8, wonderswan.ButtonX2},
	{glfw.KeyKP6, wonderswan.ButtonX3},
	{glfw.KeyKP5, wonderswan.ButtonX4},
	{glfw.KeyEnter, wonderswan.ButtonStart},
	{glfw.KeyZ, wonderswan.ButtonB},
	{glfw.KeyX, wonderswan.ButtonA},
}

func processInput(window *gui.MasterWindow) [wonderswan.NumButtons]bool {
	var result [wonderswan.NumButtons]bool
	for _, m := range keyMap {
		if window.Platform.KeyPressed(m.key) {
			result[m.button] = true
		}
	}
	return result
}

// readJoyStick maps the stick onto the X pad and face buttons onto A, B and
// Start.
func readJoyStick(joy glfw.Joystick) [wonderswan.NumButtons]bool {
	var result [wonderswan.NumButtons]bool
	if !joy.Present() {
		return result
	}
	axes := joy.GetAxes()
	buttons := joy.GetButtons()
	if len(axes) < 2 {
		return result
	}

	a, b, start := 0, 1, 7
	if joy.GetName() == "DUALSHOCK 4 Wireless Controller" {
		a, b, start = 2, 1, 9
	}
	pressed := func(i int) bool {
		return i < len(buttons) && buttons[i] == glfw.Press
	}
	result[wonderswan.ButtonA] = pressed(a)
	result[wonderswan.ButtonB] = pressed(b)
	result[wonderswan.ButtonStart] = pressed(start)
	result[wonderswan.ButtonX1] = axes[1] < -0.5
	result[wonderswan.ButtonX2] = axes[0] > 0.5
	result[wonderswan.ButtonX3] = axes[1] > 0.5
	result[wonderswan.ButtonX4] = axes[0] < -0.5
	return result
}

func combineButtons(a, b [wonderswan.NumButtons]bool) [wonderswan.NumButtons]bool {
	var result [wonderswan.NumButtons]bool
	for i := range result {
		result[i] = a[i] || b[i]
	}
	return result
}
