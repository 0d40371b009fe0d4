package util

import (
	"math"
	"strconv"

	"golang.org/x/exp/rand"
)

// Epsilon absorbs floating point drift in accumulated times and risk comparisons.
const Epsilon = 0.0005

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// FormatFixed prints val with exactly precision digits after the decimal point.
func FormatFixed(val float64, precision int) string {
	return strconv.FormatFloat(val, 'f', precision, 64)
}

// CompareFloat returns 0 when a and b are within Epsilon of each other, 1 if a > b and -1 if a < b.
func CompareFloat(a, b float64) int {
	if math.Abs(a-b) < Epsilon {
		return 0
	}
	if a > b {
		return 1
	}
	return -1
}

// Exceeds reports whether value is above limit beyond Epsilon.
func Exceeds(value, limit float64) bool {
	return CompareFloat(value, limit) == 1
}

func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

func generateRandomInt(min, max int) int {
	return min + rand.Intn(max-min)
}

func QuickSortG[T any](arr []T, compare func(a, b T) int) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	return QuickSort(copyArr, 0, len(arr)-1, compare)
}

func QuickSort[T any](arr []T, low, high int, compare func(a, b T) int) []T {
	if low < high {
		pivotIndex := generateRandomInt(low, high)
		pivotValue := arr[pivotIndex]

		arr[pivotIndex], arr[high] = arr[high], arr[pivotIndex]

		i := low - 1

		for j := low; j < high; j++ {
			if compare(arr[j], pivotValue) < 0 {
				i++
				arr[i], arr[j] = arr[j], arr[i]
			}
		}

		arr[i+1], arr[high] = arr[high], arr[i+1]

		QuickSort(arr, low, i, compare)
		QuickSort(arr, i+2, high, compare)
	}
	return arr
}
