package compress

// CalculateSize constrains width to maxWidth while preserving the aspect ratio.
// The scaled height is rounded half up. Images narrower than maxWidth are
// returned unchanged; zero dimensions are not guarded.
func CalculateSize(width, height, maxWidth int) Dimensions {
	if width <= maxWidth {
		return Dimensions{Width: width, Height: height}
	}
	// round(height*maxWidth/width) in integer arithmetic
	scaled := (2*height*maxWidth + width) / (2 * width)
	return Dimensions{Width: maxWidth, Height: scaled}
}
