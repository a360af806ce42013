package toon

// SizeReport compares a JSON document against its TOON rendering.
type SizeReport struct {
	JSONBytes int
	ToonBytes int
	// Reduction is the size saving in percent, negative when the
	// TOON form is larger.
	Reduction float64
}

// Stats encodes jsonText and measures both renderings.
func Stats(jsonText string) (*SizeReport, error) {
	out, err := Encode(jsonText)
	if err != nil {
		return nil, err
	}
	r := &SizeReport{JSONBytes: len(jsonText), ToonBytes: len(out)}
	if r.JSONBytes > 0 {
		r.Reduction = (1 - float64(r.ToonBytes)/float64(r.JSONBytes)) * 100
	}
	return r, nil
}
