package config

import (
	"os"
	"path/filepath"
	"testing"

	"smoothie-go-migration/pkg/errors"
)

const sampleConfig = `
# machine setup
[cutter_compensation]
radius: 1.5
side = left

[serial]
port: /dev/ttyUSB0
baud: 250000          ; override the default
`

func TestLoadString(t *testing.T) {
	c, err := LoadString(sampleConfig)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	names := c.GetSectionNames()
	if len(names) != 2 || names[0] != "cutter_compensation" || names[1] != "serial" {
		t.Errorf("section names: %v", names)
	}

	sec, err := c.GetSection("cutter_compensation")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if v, _ := sec.GetFloat("radius"); v != 1.5 {
		t.Errorf("radius: got %v, want 1.5", v)
	}
	// '=' separator and case-insensitive lookup.
	if v, _ := sec.Get("SIDE"); v != "left" {
		t.Errorf("side: got %q, want left", v)
	}
}

func TestInlineCommentStripped(t *testing.T) {
	c, err := LoadString(sampleConfig)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	sec, _ := c.GetSection("serial")
	if v, _ := sec.GetInt("baud"); v != 250000 {
		t.Errorf("baud: got %v, want 250000", v)
	}
}

func TestMissingSectionAndOption(t *testing.T) {
	c, _ := LoadString("[a]\nx: 1\n")

	if _, err := c.GetSection("nope"); !errors.Is(err, errors.ErrConfigSection) {
		t.Errorf("missing section: got %v", err)
	}

	sec, _ := c.GetSection("a")
	if _, err := sec.Get("missing"); !errors.Is(err, errors.ErrConfigOption) {
		t.Errorf("missing option: got %v", err)
	}
	if v, err := sec.Get("missing", "fb"); err != nil || v != "fb" {
		t.Errorf("fallback: got %q, %v", v, err)
	}
}

func TestTypedGetters(t *testing.T) {
	c, _ := LoadString("[s]\nf: 2.5\ni: 7\nb: yes\nbad: xyz\n")
	sec, _ := c.GetSection("s")

	if v, err := sec.GetFloat("f"); err != nil || v != 2.5 {
		t.Errorf("GetFloat: %v, %v", v, err)
	}
	if v, err := sec.GetInt("i"); err != nil || v != 7 {
		t.Errorf("GetInt: %v, %v", v, err)
	}
	if v, err := sec.GetBool("b"); err != nil || v != true {
		t.Errorf("GetBool: %v, %v", v, err)
	}
	if _, err := sec.GetFloat("bad"); !errors.Is(err, errors.ErrConfigType) {
		t.Errorf("bad float: got %v", err)
	}
	if _, err := sec.GetFloatAbove("f", 3.0); !errors.Is(err, errors.ErrConfigType) {
		t.Errorf("bound violation: got %v", err)
	}
}

func TestGetChoice(t *testing.T) {
	c, _ := LoadString("[s]\nside: LEFT\nother: up\n")
	sec, _ := c.GetSection("s")

	v, err := sec.GetChoice("side", []string{"off", "left", "right"})
	if err != nil || v != "left" {
		t.Errorf("GetChoice: got %q, %v", v, err)
	}
	if _, err := sec.GetChoice("other", []string{"off", "left", "right"}); err == nil {
		t.Error("invalid choice must error")
	}
}

func TestCheckUnused(t *testing.T) {
	c, _ := LoadString("[used]\na: 1\nb: 2\n\n[ignored]\nc: 3\n")

	if err := c.CheckUnused(); err == nil {
		t.Error("untouched sections must be reported")
	}

	sec, _ := c.GetSection("used")
	c.GetSection("ignored")
	sec.Get("a")
	if err := c.CheckUnused(); err == nil {
		t.Error("untouched options must be reported")
	}
	sec2, _ := c.GetSection("ignored")
	sec.Get("b")
	sec2.Get("c")
	if err := c.CheckUnused(); err != nil {
		t.Errorf("fully consumed config flagged: %v", err)
	}
}

func TestLoadWithInclude(t *testing.T) {
	dir := t.TempDir()
	extra := filepath.Join(dir, "extra.cfg")
	main := filepath.Join(dir, "main.cfg")
	os.WriteFile(extra, []byte("[serial]\nbaud: 57600\n"), 0644)
	os.WriteFile(main, []byte("[include extra.cfg]\n[serial]\nport: /dev/ttyACM0\n"), 0644)

	c, err := Load(main)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	sec, _ := c.GetSection("serial")
	if v, _ := sec.GetInt("baud"); v != 57600 {
		t.Errorf("included baud: got %v", v)
	}
	if v, _ := sec.Get("port"); v != "/dev/ttyACM0" {
		t.Errorf("merged port: got %q", v)
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	c, _ := LoadString("")
	s, err := LoadSettings(c)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Radius != 1.0 || s.Side != "off" || s.SerialBaud != 115200 || s.SerialPort != "" {
		t.Errorf("defaults: %+v", s)
	}
}

func TestLoadSettings(t *testing.T) {
	c, _ := LoadString(sampleConfig)
	s, err := LoadSettings(c)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Radius != 1.5 || s.Side != "left" {
		t.Errorf("compensation settings: %+v", s)
	}
	if s.SerialPort != "/dev/ttyUSB0" || s.SerialBaud != 250000 {
		t.Errorf("serial settings: %+v", s)
	}

	if err := c.CheckUnused(); err != nil {
		t.Errorf("settings loader must consume every option: %v", err)
	}
}

func TestRejectBadSettings(t *testing.T) {
	c, _ := LoadString("[cutter_compensation]\nradius: -2\n")
	if _, err := LoadSettings(c); !errors.Is(err, errors.ErrConfigType) {
		t.Errorf("negative radius: got %v", err)
	}

	c, _ = LoadString("[cutter_compensation]\nside: diagonal\n")
	if _, err := LoadSettings(c); err == nil {
		t.Error("invalid side must error")
	}
}
