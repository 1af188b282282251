package framework_for_imgui

import "github.com/inkyblackness/imgui-go/v4"

// SetupFont loads the built in imgui font. The returned slice is indexed
// by the caller's font choice; index 0 is the default.
func SetupFont(io imgui.IO) []imgui.Font {
	fonts := io.Fonts()
	return []imgui.Font{fonts.AddFontDefault()}
}
