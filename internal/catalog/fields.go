package catalog

import (
	"github.com/hello7893/romdex/internal/checksum"
	"github.com/hello7893/romdex/internal/rdb"
)

// setter copies one recognized record value into its entry field. A value
// of the wrong kind is left unapplied, keeping the field at its previous
// (or default) state.
type setter func(e *Entry, v rdb.Value)

func text(dst func(*Entry) *string) setter {
	return func(e *Entry, v rdb.Value) {
		if v.Kind == rdb.KindString {
			*dst(e) = v.Str
		}
	}
}

func num(dst func(*Entry) *uint64) setter {
	return func(e *Entry, v rdb.Value) {
		if v.Kind == rdb.KindUint {
			*dst(e) = v.Num
		}
	}
}

func tri(dst func(*Entry) *TriState) setter {
	return func(e *Entry, v rdb.Value) {
		if v.Kind != rdb.KindUint {
			return
		}
		if v.Num == 0 {
			*dst(e) = Unsupported
		} else {
			*dst(e) = Supported
		}
	}
}

func hexText(dst func(*Entry) *string) setter {
	return func(e *Entry, v rdb.Value) {
		if v.Kind == rdb.KindBinary {
			*dst(e) = checksum.HexUpper(v.Bin)
		}
	}
}

// fields maps recognized record keys to their destination. Keys outside
// this table are ignored, so source records can grow new attributes
// without breaking materialization.
var fields = map[string]setter{
	"name":        text(func(e *Entry) *string { return &e.Title }),
	"description": text(func(e *Entry) *string { return &e.Description }),
	"publisher":   text(func(e *Entry) *string { return &e.Publisher }),
	"developer":   text(func(e *Entry) *string { return &e.Developer }),
	"origin":      text(func(e *Entry) *string { return &e.Origin }),
	"franchise":   text(func(e *Entry) *string { return &e.Franchise }),

	"bbfc_rating":  text(func(e *Entry) *string { return &e.BBFCRating }),
	"elspa_rating": text(func(e *Entry) *string { return &e.ELSPARating }),
	"esrb_rating":  text(func(e *Entry) *string { return &e.ESRBRating }),
	"pegi_rating":  text(func(e *Entry) *string { return &e.PEGIRating }),
	"cero_rating":  text(func(e *Entry) *string { return &e.CERORating }),

	"enhancement_hw": text(func(e *Entry) *string { return &e.EnhancementHW }),
	"edge_review":    text(func(e *Entry) *string { return &e.EdgeReview }),

	"edge_rating":    num(func(e *Entry) *uint64 { return &e.EdgeRating }),
	"edge_issue":     num(func(e *Entry) *uint64 { return &e.EdgeIssue }),
	"famitsu_rating": num(func(e *Entry) *uint64 { return &e.FamitsuRating }),
	"users":          num(func(e *Entry) *uint64 { return &e.MaxUsers }),
	"releasemonth":   num(func(e *Entry) *uint64 { return &e.ReleaseMonth }),
	"releaseyear":    num(func(e *Entry) *uint64 { return &e.ReleaseYear }),

	"analog": tri(func(e *Entry) *TriState { return &e.AnalogSupported }),
	"rumble": tri(func(e *Entry) *TriState { return &e.RumbleSupported }),

	"crc":  hexText(func(e *Entry) *string { return &e.CRC32 }),
	"sha1": hexText(func(e *Entry) *string { return &e.SHA1 }),
	"md5":  hexText(func(e *Entry) *string { return &e.MD5 }),
}

// project builds one entry from a map-shaped record. Pairs apply in
// delivery order; a duplicated key silently overwrites the earlier value.
func project(rec rdb.Value) Entry {
	e := NewEntry()
	for _, p := range rec.Map {
		if set, ok := fields[p.Key]; ok {
			set(&e, p.Value)
		}
	}
	return e
}
