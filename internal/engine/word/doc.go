// Package word provides word segmentation and iteration over a single line.
//
// What counts as a word is supplied by a Segmenter. Two are provided:
//
//   - ClassSegmenter: runs of word characters (letters, digits and configured
//     connectors such as '_') and runs of punctuation are separate words.
//   - UnicodeSegmenter: Unicode word boundaries via github.com/rivo/uniseg.
//
// Left and Iterate give the cursor-relative view used by editor actions:
//
//	from := word.Left(seg, line, cursor, true)
//	for span := range word.Iterate(seg, line, from) {
//	    // span.Start, span.End (exclusive), span.Text
//	}
package word
