package pagecursor

const (
	MaxPageSize     = 100
	DefaultPageSize = 20
	DefaultPage     = 1
)

func IsNormalizedPageSizeMax(size int, maxSize int) (int, bool) {
	if size <= 0 {
		return DefaultPageSize, false
	} else if size > maxSize {
		return maxSize, false
	}

	return size, true
}

func NormalizePageSizeMax(size int, maxSize int) int {
	ret, _ := IsNormalizedPageSizeMax(size, maxSize)
	return ret
}

func NormalizePageSize(size int) int {
	return NormalizePageSizeMax(size, MaxPageSize)
}

// NormalizePage maps non-positive page numbers to DefaultPage.
func NormalizePage(page int) int {
	if page < 1 {
		return DefaultPage
	}

	return page
}
