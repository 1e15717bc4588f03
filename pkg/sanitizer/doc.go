// Package sanitizer normalizes user input before validation and storage.
//
//	issuer := sanitizer.Apply(in.Issuer,
//		sanitizer.RemoveControlChars,
//		sanitizer.SingleLine,
//	)
package sanitizer
