package gui

import (
	"image"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/kaishuu0123/wondercrab/internal/gui/framework_for_imgui"
)

// MasterWindow owns the imgui context, the GLFW window and the texture the
// emulator frame is drawn from.
type MasterWindow struct {
	ClearColor [4]float32
	Platform   *framework_for_imgui.GLFW
	Renderer   *framework_for_imgui.OpenGL3
	FontsData  []imgui.Font

	context   *imgui.Context
	io        imgui.IO
	frame     imgui.TextureID
	frameSize image.Point
}

func NewMasterWindow(title string, width, height int) (*MasterWindow, error) {
	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	io.SetIniFilename("")

	platform, err := framework_for_imgui.NewGLFW(io, width, height, title)
	if err != nil {
		context.Destroy()
		return nil, err
	}

	r, err := framework_for_imgui.NewOpenGL3(io)
	if err != nil {
		platform.Dispose()
		context.Destroy()
		return nil, err
	}

	fontsData := framework_for_imgui.SetupFont(io)
	r.SetFontTexture(io.Fonts().TextureDataRGBA32())

	mw := &MasterWindow{
		ClearColor: [4]float32{0, 0, 0, 1},
		Platform:   platform,
		Renderer:   r,
		FontsData:  fontsData,
		context:    context,
		io:         io,
	}
	mw.setTheme()
	return mw, nil
}

func (w *MasterWindow) Dispose() {
	if w.frameSize != (image.Point{}) {
		w.Renderer.ReleaseImage(w.frame)
	}
	w.Renderer.Dispose()
	w.Platform.Dispose()
	w.context.Destroy()
}

// setTheme picks greys close to the WonderSwan's LCD.
func (w *MasterWindow) setTheme() {
	style := imgui.CurrentStyle()

	imgui.PushStyleVarFloat(imgui.StyleVarWindowRounding, 0)
	imgui.PushStyleVarFloat(imgui.StyleVarFrameRounding, 2)
	imgui.PushStyleVarFloat(imgui.StyleVarFrameBorderSize, 1)

	colors := map[imgui.StyleColorID]imgui.Vec4{
		imgui.StyleColorText:          {X: 0.92, Y: 0.93, Z: 0.90, W: 1.00},
		imgui.StyleColorTextDisabled:  {X: 0.50, Y: 0.52, Z: 0.48, W: 1.00},
		imgui.StyleColorWindowBg:      {X: 0.14, Y: 0.15, Z: 0.14, W: 0.92},
		imgui.StyleColorPopupBg:       {X: 0.10, Y: 0.11, Z: 0.10, W: 0.96},
		imgui.StyleColorBorder:        {X: 0.30, Y: 0.32, Z: 0.29, W: 1.00},
		imgui.StyleColorFrameBg:       {X: 0.22, Y: 0.24, Z: 0.21, W: 1.00},
		imgui.StyleColorMenuBarBg:     {X: 0.18, Y: 0.19, Z: 0.17, W: 1.00},
		imgui.StyleColorHeader:        {X: 0.35, Y: 0.40, Z: 0.33, W: 0.60},
		imgui.StyleColorHeaderHovered: {X: 0.45, Y: 0.52, Z: 0.40, W: 0.85},
		imgui.StyleColorHeaderActive:  {X: 0.50, Y: 0.58, Z: 0.44, W: 1.00},
		imgui.StyleColorCheckMark:     {X: 0.72, Y: 0.82, Z: 0.60, W: 1.00},
		imgui.StyleColorButton:        {X: 0.26, Y: 0.29, Z: 0.25, W: 1.00},
		imgui.StyleColorButtonHovered: {X: 0.45, Y: 0.52, Z: 0.40, W: 1.00},
	}
	for id, c := range colors {
		style.SetColor(id, c)
	}
}

func (w *MasterWindow) SetDropCallback(cb func(filenames []string)) {
	w.Platform.SetDropCallback(cb)
}

// UploadFrame copies img into the frame texture, creating it on first use
// or when the size changes.
func (w *MasterWindow) UploadFrame(img *image.RGBA) error {
	size := img.Bounds().Size()
	if size == w.frameSize {
		w.Renderer.UpdateImageTexture(w.frame, img)
		return nil
	}
	if w.frameSize != (image.Point{}) {
		w.Renderer.ReleaseImage(w.frame)
		w.frameSize = image.Point{}
	}
	texture, err := w.Renderer.CreateImageTexture(img)
	if err != nil {
		return err
	}
	w.frame = texture
	w.frameSize = size
	return nil
}

func (w *MasterWindow) Frame() imgui.TextureID {
	return w.frame
}

// Render runs one imgui frame. layout issues the widgets and draw calls.
func (w *MasterWindow) Render(layout func()) {
	w.Platform.NewFrame()
	imgui.NewFrame()

	layout()

	imgui.Render()
	w.Renderer.PreRender(w.ClearColor)
	w.Renderer.Render(w.Platform.DisplaySize(), w.Platform.FramebufferSize(), imgui.RenderedDrawData())
	w.Platform.PostRender()
}
