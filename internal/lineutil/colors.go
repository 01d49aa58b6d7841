// Package lineutil provides LINE message building utilities.
package lineutil

// 4-Point Grid Spacing System
// All spacing values follow the 4-point grid for consistent visual rhythm.
const (
	SpacingS = "8px"  // Small
	SpacingM = "12px" // Medium
	SpacingL = "16px" // Large
)

// LINE Design System Colors
// Reference: https://designsystem.line.me/LDSM/foundation/color/line-color-guide-ex-en
const (
	// Brand Colors - LINE Green
	ColorLineGreen = "#06C755" // LINE Green (iOS) - Primary brand color

	// Gray Scale - For text, labels, and UI elements
	ColorWhite   = "#FFFFFF" // Pure white
	ColorGray300 = "#DFDFDF" // Separator, divider
	ColorGray900 = "#111111" // Primary text (highest contrast)

	// Semantic Colors
	ColorPrimary   = ColorLineGreen // Primary brand color for hero, buttons
	ColorText      = ColorGray900   // Primary text (body, headings)
	ColorSeparator = ColorGray300   // Divider lines

	// Component Colors
	ColorHeroBg   = ColorLineGreen // Hero section background
	ColorHeroText = ColorWhite     // Hero section text
)
