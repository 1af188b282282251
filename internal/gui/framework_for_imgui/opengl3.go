package framework_for_imgui

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/inkyblackness/imgui-go/v4"
)

const glslVersion = "#version 150"

const vertexShader = `
uniform mat4 ProjMtx;
in vec2 Position;
in vec2 UV;
in vec4 Color;
out vec2 Frag_UV;
out vec4 Frag_Color;
void main()
{
	Frag_UV = UV;
	Frag_Color = Color;
	gl_Position = ProjMtx * vec4(Position.xy, 0, 1);
}
`

const fragmentShader = `
uniform sampler2D Texture;
in vec2 Frag_UV;
in vec4 Frag_Color;
out vec4 Out_Color;
void main()
{
	Out_Color = Frag_Color * texture(Texture, Frag_UV.st);
}
`

// OpenGL3 renders imgui draw lists and the emulator frame with an
// OpenGL 3.2 core context.
type OpenGL3 struct {
	imguiIO imgui.IO

	fontTexture    uint32
	shaderHandle   uint32
	vertHandle     uint32
	fragHandle     uint32
	locTex         int32
	locProjMtx     int32
	locPosition    int32
	locUV          int32
	locColor       int32
	vboHandle      uint32
	elementsHandle uint32
}

func NewOpenGL3(io imgui.IO) (*OpenGL3, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	renderer := &OpenGL3{imguiIO: io}
	if err := renderer.createDeviceObjects(); err != nil {
		return nil, err
	}
	return renderer, nil
}

func (renderer *OpenGL3) Dispose() {
	if renderer.vboHandle != 0 {
		gl.DeleteBuffers(1, &renderer.vboHandle)
	}
	renderer.vboHandle = 0
	if renderer.elementsHandle != 0 {
		gl.DeleteBuffers(1, &renderer.elementsHandle)
	}
	renderer.elementsHandle = 0

	if renderer.shaderHandle != 0 {
		gl.DetachShader(renderer.shaderHandle, renderer.vertHandle)
		gl.DetachShader(renderer.shaderHandle, renderer.fragHandle)
		gl.DeleteShader(renderer.vertHandle)
		gl.DeleteShader(renderer.fragHandle)
		gl.DeleteProgram(renderer.shaderHandle)
	}
	renderer.shaderHandle = 0

	if renderer.fontTexture != 0 {
		gl.DeleteTextures(1, &renderer.fontTexture)
		renderer.imguiIO.Fonts().SetTextureID(0)
	}
	renderer.fontTexture = 0
}

// PreRender clears the framebuffer.
func (renderer *OpenGL3) PreRender(clearColor [4]float32) {
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Render translates the imgui draw data to OpenGL3 commands.
func (renderer *OpenGL3) Render(displaySize [2]float32, framebufferSize [2]float32, drawData imgui.DrawData) {
	displayWidth, displayHeight := displaySize[0], displaySize[1]
	fbWidth, fbHeight := framebufferSize[0], framebufferSize[1]
	if fbWidth <= 0 || fbHeight <= 0 {
		return
	}
	drawData.ScaleClipRects(imgui.Vec2{
		X: fbWidth / displayWidth,
		Y: fbHeight / displayHeight,
	})

	st := storeGLState()
	defer st.restoreGLState()

	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.ActiveTexture(gl.TEXTURE0)

	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	projection := [4][4]float32{
		{2.0 / displayWidth, 0.0, 0.0, 0.0},
		{0.0, 2.0 / -displayHeight, 0.0, 0.0},
		{0.0, 0.0, -1.0, 0.0},
		{-1.0, 1.0, 0.0, 1.0},
	}
	gl.UseProgram(renderer.shaderHandle)
	gl.Uniform1i(renderer.locTex, 0)
	gl.UniformMatrix4fv(renderer.locProjMtx, 1, false, &projection[0][0])
	gl.BindSampler(0, 0)

	// VAOs are not shared between contexts, so one is made per frame
	var vaoHandle uint32
	gl.GenVertexArrays(1, &vaoHandle)
	gl.BindVertexArray(vaoHandle)
	gl.BindBuffer(gl.ARRAY_BUFFER, renderer.vboHandle)
	gl.EnableVertexAttribArray(uint32(renderer.locPosition))
	gl.EnableVertexAttribArray(uint32(renderer.locUV))
	gl.EnableVertexAttribArray(uint32(renderer.locColor))
	vertexSize, offsetPos, offsetUV, offsetCol := imgui.VertexBufferLayout()
	gl.VertexAttribPointerWithOffset(uint32(renderer.locPosition), 2, gl.FLOAT, false, int32(vertexSize), uintptr(offsetPos))
	gl.VertexAttribPointerWithOffset(uint32(renderer.locUV), 2, gl.FLOAT, false, int32(vertexSize), uintptr(offsetUV))
	gl.VertexAttribPointerWithOffset(uint32(renderer.locColor), 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), uintptr(offsetCol))

	indexSize := imgui.IndexBufferLayout()
	drawType := gl.UNSIGNED_SHORT
	if indexSize == 4 {
		drawType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		var indexBufferOffset uintptr

		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		gl.BindBuffer(gl.ARRAY_BUFFER, renderer.vboHandle)
		gl.BufferData(gl.ARRAY_BUFFER, vertexBufferSize, vertexBuffer, gl.STREAM_DRAW)

		indexBuffer, indexBufferSize := list.IndexBuffer()
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, renderer.elementsHandle)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBufferSize, indexBuffer, gl.STREAM_DRAW)

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else {
				gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
				clipRect := cmd.ClipRect()
				gl.Scissor(int32(clipRect.X), int32(fbHeight)-int32(clipRect.W), int32(clipRect.Z-clipRect.X), int32(clipRect.W-clipRect.Y))
				gl.DrawElementsWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), uint32(drawType), indexBufferOffset)
			}
			indexBufferOffset += uintptr(cmd.ElementCount() * indexSize)
		}
	}
	gl.DeleteVertexArrays(1, &vaoHandle)
}

// SetFontTexture uploads the font atlas.
func (renderer *OpenGL3) SetFontTexture(image *imgui.RGBA32Image) {
	var lastTexture int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)

	gl.GenTextures(1, &renderer.fontTexture)
	gl.BindTexture(gl.TEXTURE_2D, renderer.fontTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(image.Width), int32(image.Height),
		0, gl.RGBA, gl.UNSIGNED_BYTE, image.Pixels)

	renderer.imguiIO.Fonts().SetTextureID(imgui.TextureID(renderer.fontTexture))
	gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))
}

// CreateImageTexture makes a nearest filtered texture holding img.
func (renderer *OpenGL3) CreateImageTexture(img *image.RGBA) (imgui.TextureID, error) {
	var lastTexture int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)
	defer gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))

	var handle uint32
	gl.GenTextures(1, &handle)
	if handle == 0 {
		return 0, fmt.Errorf("create texture: no handle")
	}
	gl.BindTexture(gl.TEXTURE_2D, handle)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride)/4)
	defer gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	size := img.Bounds().Size()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(size.X), int32(size.Y),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	return imgui.TextureID(handle), nil
}

// UpdateImageTexture replaces the pixels of a texture made by
// CreateImageTexture. img must keep the original size.
func (renderer *OpenGL3) UpdateImageTexture(id imgui.TextureID, img *image.RGBA) {
	var lastTexture int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)
	defer gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))

	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride)/4)
	defer gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	size := img.Bounds().Size()
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(size.X), int32(size.Y),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
}

func (renderer *OpenGL3) ReleaseImage(id imgui.TextureID) {
	handle := uint32(id)
	gl.DeleteTextures(1, &handle)
}

func (renderer *OpenGL3) createDeviceObjects() error {
	var lastTexture, lastArrayBuffer, lastVertexArray int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)
	gl.GetIntegerv(gl.ARRAY_BUFFER_BINDING, &lastArrayBuffer)
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &lastVertexArray)
	defer func() {
		gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))
		gl.BindBuffer(gl.ARRAY_BUFFER, uint32(lastArrayBuffer))
		gl.BindVertexArray(uint32(lastVertexArray))
	}()

	var err error
	renderer.vertHandle, err = compileShader(gl.VERTEX_SHADER, glslVersion+vertexShader)
	if err != nil {
		return err
	}
	renderer.fragHandle, err = compileShader(gl.FRAGMENT_SHADER, glslVersion+fragmentShader)
	if err != nil {
		return err
	}

	renderer.shaderHandle = gl.CreateProgram()
	gl.AttachShader(renderer.shaderHandle, renderer.vertHandle)
	gl.AttachShader(renderer.shaderHandle, renderer.fragHandle)
	gl.LinkProgram(renderer.shaderHandle)

	var status int32
	gl.GetProgramiv(renderer.shaderHandle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return fmt.Errorf("link shader program: %s", programLog(renderer.shaderHandle))
	}

	renderer.locTex = gl.GetUniformLocation(renderer.shaderHandle, gl.Str("Texture\x00"))
	renderer.locProjMtx = gl.GetUniformLocation(renderer.shaderHandle, gl.Str("ProjMtx\x00"))
	renderer.locPosition = gl.GetAttribLocation(renderer.shaderHandle, gl.Str("Position\x00"))
	renderer.locUV = gl.GetAttribLocation(renderer.shaderHandle, gl.Str("UV\x00"))
	renderer.locColor = gl.GetAttribLocation(renderer.shaderHandle, gl.Str("Color\x00"))

	gl.GenBuffers(1, &renderer.vboHandle)
	gl.GenBuffers(1, &renderer.elementsHandle)
	return nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	handle := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetShaderInfoLog(handle, length, nil, gl.Str(log))
		gl.DeleteShader(handle)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(log, "\x00"))
	}
	return handle, nil
}

func programLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	log := strings.Repeat("\x00", int(length+1))
	gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// glState holds the GL state Render changes so it can be put back.
type glState struct {
	lastActiveTexture      int32
	lastProgram            int32
	lastTexture            int32
	lastSampler            int32
	lastArrayBuffer        int32
	lastElementArrayBuffer int32
	lastVertexArray        int32
	lastPolygonMode        [2]int32
	lastViewport           [4]int32
	lastScissorBox         [4]int32
	lastBlendSrcRgb        int32
	lastBlendDstRgb        int32
	lastBlendSrcAlpha      int32
	lastBlendDstAlpha      int32
	lastBlendEquationRgb   int32
	lastBlendEquationAlpha int32
	lastEnableBlend        bool
	lastEnableCullFace     bool
	lastEnableDepthTest    bool
	lastEnableScissorTest  bool
}

func storeGLState() *glState {
	st := &glState{}
	gl.GetIntegerv(gl.ACTIVE_TEXTURE, &st.lastActiveTexture)
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &st.lastProgram)
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &st.lastTexture)
	gl.GetIntegerv(gl.SAMPLER_BINDING, &st.lastSampler)
	gl.GetIntegerv(gl.ARRAY_BUFFER_BINDING, &st.lastArrayBuffer)
	gl.GetIntegerv(gl.ELEMENT_ARRAY_BUFFER_BINDING, &st.lastElementArrayBuffer)
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &st.lastVertexArray)
	gl.GetIntegerv(gl.POLYGON_MODE, &st.lastPolygonMode[0])
	gl.GetIntegerv(gl.VIEWPORT, &st.lastViewport[0])
	gl.GetIntegerv(gl.SCISSOR_BOX, &st.lastScissorBox[0])
	gl.GetIntegerv(gl.BLEND_SRC_RGB, &st.lastBlendSrcRgb)
	gl.GetIntegerv(gl.BLEND_DST_RGB, &st.lastBlendDstRgb)
	gl.GetIntegerv(gl.BLEND_SRC_ALPHA, &st.lastBlendSrcAlpha)
	gl.GetIntegerv(gl.BLEND_DST_ALPHA, &st.lastBlendDstAlpha)
	gl.GetIntegerv(gl.BLEND_EQUATION_RGB, &st.lastBlendEquationRgb)
	gl.GetIntegerv(gl.BLEND_EQUATION_ALPHA, &st.lastBlendEquationAlpha)
	st.lastEnableBlend = gl.IsEnabled(gl.BLEND)
	st.lastEnableCullFace = gl.IsEnabled(gl.CULL_FACE)
	st.lastEnableDepthTest = gl.IsEnabled(gl.DEPTH_TEST)
	st.lastEnableScissorTest = gl.IsEnabled(gl.SCISSOR_TEST)
	return st
}

func (st *glState) restoreGLState() {
	gl.UseProgram(uint32(st.lastProgram))
	gl.BindTexture(gl.TEXTURE_2D, uint32(st.lastTexture))
	gl.BindSampler(0, uint32(st.lastSampler))
	gl.ActiveTexture(uint32(st.lastActiveTexture))
	gl.BindVertexArray(uint32(st.lastVertexArray))
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(st.lastArrayBuffer))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(st.lastElementArrayBuffer))
	gl.BlendEquationSeparate(uint32(st.lastBlendEquationRgb), uint32(st.lastBlendEquationAlpha))
	gl.BlendFuncSeparate(uint32(st.lastBlendSrcRgb), uint32(st.lastBlendDstRgb), uint32(st.lastBlendSrcAlpha), uint32(st.lastBlendDstAlpha))
	setEnabled(gl.BLEND, st.lastEnableBlend)
	setEnabled(gl.CULL_FACE, st.lastEnableCullFace)
	setEnabled(gl.DEPTH_TEST, st.lastEnableDepthTest)
	setEnabled(gl.SCISSOR_TEST, st.lastEnableScissorTest)
	gl.PolygonMode(gl.FRONT_AND_BACK, uint32(st.lastPolygonMode[0]))
	gl.Viewport(st.lastViewport[0], st.lastViewport[1], st.lastViewport[2], st.lastViewport[3])
	gl.Scissor(st.lastScissorBox[0], st.lastScissorBox[1], st.lastScissorBox[2], st.lastScissorBox[3])
}

func setEnabled(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}
