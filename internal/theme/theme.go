package theme

import (
	"image/color"
)

// Theme defines the colour palette of the viewer and of rendered previews.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the canvas
	Foreground color.RGBA // Status line text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA // Also marks the active tool
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Annotations
	BoxStroke       color.RGBA // Used when a label has no colour
	BoxCandidate    color.RGBA // Box being drawn
	Handle          color.RGBA
	HandleBorder    color.RGBA
	Cursor          color.RGBA // Brush outline
	LabelText       color.RGBA
	LabelBackground color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		BoxStroke:             color.RGBA{255, 255, 255, 255},
		BoxCandidate:          color.RGBA{255, 215, 0, 255},
		Handle:                color.RGBA{255, 255, 255, 255},
		HandleBorder:          color.RGBA{0, 0, 0, 255},
		Cursor:                color.RGBA{0, 0, 0, 200},
		LabelText:             color.RGBA{255, 255, 255, 255},
		LabelBackground:       color.RGBA{0, 0, 0, 160},
	}
}
