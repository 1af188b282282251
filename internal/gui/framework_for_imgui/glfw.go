package framework_for_imgui

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
)

// GLFW is the window, keyboard and OpenGL 3.2 context of the emulator.
// imgui only draws into it, so no mouse or text input is forwarded.
type GLFW struct {
	imguiIO imgui.IO

	Window *glfw.Window

	time           float64
	onDropCallback func([]string)
}

func init() {
	runtime.LockOSThread()
}

// NewGLFW opens a fixed size window with a current OpenGL 3.2 core context.
func NewGLFW(io imgui.IO, width, height int, title string) (*GLFW, error) {
	err := glfw.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, 1)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	platform := &GLFW{
		imguiIO: io,
		Window:  window,
	}
	window.SetDropCallback(platform.onDrop)

	return platform, nil
}

func (platform *GLFW) Dispose() {
	platform.Window.Destroy()
	glfw.Terminate()
}

func (platform *GLFW) ShouldStop() bool {
	return platform.Window.ShouldClose()
}

func (platform *GLFW) ProcessEvents() {
	glfw.PollEvents()
}

func (platform *GLFW) DisplaySize() [2]float32 {
	w, h := platform.Window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

func (platform *GLFW) FramebufferSize() [2]float32 {
	w, h := platform.Window.GetFramebufferSize()
	return [2]float32{float32(w), float32(h)}
}

// NewFrame passes the window size and frame time to imgui. The size is
// sent every frame because rotating the display resizes the window.
func (platform *GLFW) NewFrame() {
	displaySize := platform.DisplaySize()
	platform.imguiIO.SetDisplaySize(imgui.Vec2{X: displaySize[0], Y: displaySize[1]})

	currentTime := glfw.GetTime()
	if platform.time > 0 {
		platform.imguiIO.SetDeltaTime(float32(currentTime - platform.time))
	}
	platform.time = currentTime
}

// PostRender performs a buffer swap.
func (platform *GLFW) PostRender() {
	platform.Window.SwapBuffers()
}

func (platform *GLFW) onDrop(window *glfw.Window, names []string) {
	window.Focus()

	if platform.onDropCallback != nil {
		platform.onDropCallback(names)
	}
}

func (platform *GLFW) KeyPressed(key glfw.Key) bool {
	return platform.Window.GetKey(key) == glfw.Press
}

// SetSize resizes the window, used when the display is rotated.
func (platform *GLFW) SetSize(width, height int) {
	platform.Window.SetSize(width, height)
}

func (platform *GLFW) SetDropCallback(cb func(names []string)) {
	platform.onDropCallback = cb
}
