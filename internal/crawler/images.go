package crawler

import "sort"

// minViewportFraction is how much of the viewport width or height an image
// must cover to be treated as the page's main content
const minViewportFraction = 0.3

// LargestImage picks the image covering the most viewport area among those
// spanning at least 30% of the viewport width or height.
func LargestImage(images []Image, vp Viewport) (string, bool) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return "", false
	}

	sorted := make([]Image, len(images))
	copy(sorted, images)
	viewportArea := vp.Width * vp.Height
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Width*sorted[i].Height/viewportArea > sorted[j].Width*sorted[j].Height/viewportArea
	})

	for _, img := range sorted {
		if img.Src == "" {
			continue
		}
		if img.Width/vp.Width >= minViewportFraction || img.Height/vp.Height >= minViewportFraction {
			return img.Src, true
		}
	}
	return "", false
}
