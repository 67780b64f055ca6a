package git

import (
	"strconv"
	"strings"
)

// normalizeHunkHeaders rewrites the hunk headers of go-git's unified encoder
// output to the ones git itself prints for the same change.
//
// go-git only tracks the start line of the side that opens a hunk; the other
// side is off by one when no context is requested. It also appends the line
// just above the hunk as a heading whatever that line holds, so headings are
// dropped. Both starts are recomputed from the opening side and the running
// line offset of earlier hunks in the same file.
func normalizeHunkHeaders(text string) string {
	lines := strings.SplitAfter(text, "\n")

	var b strings.Builder
	b.Grow(len(text))

	delta := 0
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, diffHeaderPrefix) {
			delta = 0
		}
		oldStart, newStart, ok := parseHunkStarts(line)
		if !ok {
			b.WriteString(line)
			continue
		}

		end := i + 1
		oldCount, newCount := 0, 0
		var opener byte
		for ; end < len(lines); end++ {
			body := lines[end]
			if body == "" || strings.HasPrefix(body, "@@") || strings.HasPrefix(body, diffHeaderPrefix) {
				break
			}
			switch body[0] {
			case ' ':
				oldCount++
				newCount++
			case '-':
				oldCount++
			case '+':
				newCount++
			default:
				continue
			}
			if opener == 0 && body[0] != ' ' {
				opener = body[0]
			}
		}

		var oldBefore, newBefore int
		switch opener {
		case '-':
			oldBefore = oldStart - 1
			newBefore = oldBefore + delta
		case '+':
			newBefore = newStart - 1
			oldBefore = newBefore - delta
		default:
			oldBefore, newBefore = oldStart-1, newStart-1
		}

		b.WriteString("@@ -")
		b.WriteString(hunkRange(oldBefore, oldCount))
		b.WriteString(" +")
		b.WriteString(hunkRange(newBefore, newCount))
		b.WriteString(" @@\n")
		for _, body := range lines[i+1 : end] {
			b.WriteString(body)
		}

		delta += newCount - oldCount
		i = end - 1
	}
	return b.String()
}

// hunkRange formats one side of a hunk header the way git does: an empty
// side names the line before it, and a count of one is omitted.
func hunkRange(before, count int) string {
	switch count {
	case 0:
		return strconv.Itoa(before) + ",0"
	case 1:
		return strconv.Itoa(before + 1)
	default:
		return strconv.Itoa(before+1) + "," + strconv.Itoa(count)
	}
}

// parseHunkStarts reads the two start lines from "@@ -a[,b] +c[,d] @@".
func parseHunkStarts(line string) (oldStart, newStart int, ok bool) {
	rest, found := strings.CutPrefix(line, "@@ -")
	if !found {
		return 0, 0, false
	}
	oldSpec, rest, found := strings.Cut(rest, " +")
	if !found {
		return 0, 0, false
	}
	newSpec, _, found := strings.Cut(rest, " @@")
	if !found {
		return 0, 0, false
	}

	oldStart, err := rangeStart(oldSpec)
	if err != nil {
		return 0, 0, false
	}
	newStart, err = rangeStart(newSpec)
	if err != nil {
		return 0, 0, false
	}
	return oldStart, newStart, true
}

func rangeStart(spec string) (int, error) {
	start, _, _ := strings.Cut(spec, ",")
	return strconv.Atoi(start)
}
