package config

// Settings holds the typed host settings read once at session start.
type Settings struct {
	// Radius is the default tool radius used when an enable command
	// carries no radius word.
	Radius float64

	// Side is the startup compensation side: "off", "left" or
	// "right". Anything but "off" arms compensation before the
	// first streamed command.
	Side string

	// SerialPort is the device to stream G-code from; empty means
	// file or stdin input.
	SerialPort string

	// SerialBaud is the line rate for SerialPort.
	SerialBaud int
}

// LoadSettings extracts the [cutter_compensation] and [serial]
// sections. Both sections are optional; absent options take their
// defaults.
func LoadSettings(c *Config) (*Settings, error) {
	s := &Settings{
		Radius:     1.0,
		Side:       "off",
		SerialBaud: 115200,
	}

	if sec := c.GetSectionOptional("cutter_compensation"); sec != nil {
		var err error
		if s.Radius, err = sec.GetFloatAbove("radius", 0, s.Radius); err != nil {
			return nil, err
		}
		if s.Side, err = sec.GetChoice("side", []string{"off", "left", "right"}, s.Side); err != nil {
			return nil, err
		}
	}

	if sec := c.GetSectionOptional("serial"); sec != nil {
		var err error
		if s.SerialPort, err = sec.Get("port", ""); err != nil {
			return nil, err
		}
		if s.SerialBaud, err = sec.GetInt("baud", s.SerialBaud); err != nil {
			return nil, err
		}
	}

	return s, nil
}
