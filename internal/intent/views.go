package intent

// Typed views over the generic entity map for intents whose handlers need
// more than one or two fields. Decoding is explicit per intent; no
// reflection.

// MoveMouseEntities is the decoded shape for the move_mouse intent.
type MoveMouseEntities struct {
	X, Y     int
	Duration float64
	Relative bool
}

// DecodeMoveMouse decodes move_mouse entities. ok is false when the
// required coordinates are missing or unparsable.
func DecodeMoveMouse(e Entities) (MoveMouseEntities, bool) {
	x, okX := e.Int("x")
	y, okY := e.Int("y")
	if !okX || !okY {
		return MoveMouseEntities{}, false
	}
	v := MoveMouseEntities{X: x, Y: y, Duration: 0.25, Relative: e.Bool("relative")}
	if d, ok := e.Float("duration"); ok {
		v.Duration = d
	}
	return v, true
}

// ClickMouseEntities is the decoded shape for the click_mouse intent.
// X and Y are nil when the click targets the current cursor position.
type ClickMouseEntities struct {
	X, Y   *int
	Button string
	Clicks int
}

// DecodeClickMouse decodes click_mouse entities, applying the left-button
// single-click defaults.
func DecodeClickMouse(e Entities) ClickMouseEntities {
	v := ClickMouseEntities{Button: "left", Clicks: 1}
	if x, ok := e.Int("x"); ok {
		v.X = &x
	}
	if y, ok := e.Int("y"); ok {
		v.Y = &y
	}
	if b, ok := e.String("button"); ok && b != "" {
		v.Button = b
	}
	if c, ok := e.Int("clicks"); ok && c > 0 {
		v.Clicks = c
	}
	return v
}

// SendEmailEntities is the decoded shape for the send_email intent.
type SendEmailEntities struct {
	To      string
	Subject string
	Body    string
}

// DecodeSendEmail decodes send_email entities; missing lists the absent
// required fields in order.
func DecodeSendEmail(e Entities) (SendEmailEntities, []string) {
	var missing []string
	v := SendEmailEntities{}
	var ok bool
	if v.To, ok = e.String("to"); !ok || v.To == "" {
		missing = append(missing, "to")
	}
	if v.Subject, ok = e.String("subject"); !ok || v.Subject == "" {
		missing = append(missing, "subject")
	}
	if v.Body, ok = e.String("body"); !ok || v.Body == "" {
		missing = append(missing, "body")
	}
	return v, missing
}
