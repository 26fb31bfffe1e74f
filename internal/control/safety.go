package control

// apply pins the overridden outputs to their forced values.
func (o Overrides) apply(out Outputs) Outputs {
	if o.Fan != nil {
		out.Fan = *o.Fan
	}
	if o.Compressor != nil {
		out.Compressor = *o.Compressor
	}
	if o.Heat != nil {
		out.Heat = *o.Heat
	}
	if o.Damper != nil {
		d := *o.Damper
		if d < 0 {
			d = 0
		}
		if d > 100 {
			d = 100
		}
		out.Damper = d
	}
	return out
}

// applySafety is the final pipeline stage. Operator overrides are honored
// first, then an enabled freeze shutdown, then the emergency stop; the
// emergency stop unconditionally yields the all-off state regardless of any
// other decision. The zero Outputs value is that safe state.
func applySafety(out Outputs, overrides Overrides, emergencyStop, freezeShutdown bool) Outputs {
	out = overrides.apply(out)
	if freezeShutdown {
		out = Outputs{}
	}
	if emergencyStop {
		out = Outputs{}
	}
	return out
}
