package schema

// Presence is the default presence applied to keys that do not declare one.
type Presence string

const (
	PresenceOptional Presence = "optional"
	PresenceRequired Presence = "required"
)

// Options configures validation behavior. Unset (nil/empty) fields inherit
// from the enclosing scope: call options, then the defaults below. Options
// attached to a schema with Prefs override the call options for that subtree.
//
// Defaults: AbortEarly=true, AllowUnknown=false, StripUnknown=false,
// Convert=true, Presence=optional.
type Options struct {
	AbortEarly   *bool    `json:"abortEarly,omitempty" yaml:"abortEarly,omitempty"`
	AllowUnknown *bool    `json:"allowUnknown,omitempty" yaml:"allowUnknown,omitempty"`
	StripUnknown *bool    `json:"stripUnknown,omitempty" yaml:"stripUnknown,omitempty"`
	Convert      *bool    `json:"convert,omitempty" yaml:"convert,omitempty"`
	Presence     Presence `json:"presence,omitempty" yaml:"presence,omitempty"`
}

// Bool returns a pointer to b, for filling Options literals.
func Bool(b bool) *bool { return &b }

// Merge overlays the set fields of o onto the receiver and returns the
// result. Neither input is modified.
func (p Options) Merge(o Options) Options {
	out := p
	if o.AbortEarly != nil {
		out.AbortEarly = o.AbortEarly
	}
	if o.AllowUnknown != nil {
		out.AllowUnknown = o.AllowUnknown
	}
	if o.StripUnknown != nil {
		out.StripUnknown = o.StripUnknown
	}
	if o.Convert != nil {
		out.Convert = o.Convert
	}
	if o.Presence != "" {
		out.Presence = o.Presence
	}
	return out
}

// IsZero reports whether no option is set.
func (p Options) IsZero() bool {
	return p.AbortEarly == nil && p.AllowUnknown == nil && p.StripUnknown == nil && p.Convert == nil && p.Presence == ""
}

// prefs is the fully resolved form of Options used while validating.
type prefs struct {
	abortEarly   bool
	allowUnknown bool
	stripUnknown bool
	convert      bool
	presence     Presence
}

var defaultPrefs = prefs{abortEarly: true, convert: true, presence: PresenceOptional}

func (r prefs) apply(o Options) prefs {
	if o.AbortEarly != nil {
		r.abortEarly = *o.AbortEarly
	}
	if o.AllowUnknown != nil {
		r.allowUnknown = *o.AllowUnknown
	}
	if o.StripUnknown != nil {
		r.stripUnknown = *o.StripUnknown
	}
	if o.Convert != nil {
		r.convert = *o.Convert
	}
	if o.Presence != "" {
		r.presence = o.Presence
	}
	return r
}
