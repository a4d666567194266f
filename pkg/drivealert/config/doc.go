/*
Package config loads pipeline settings from YAML, JSON or TOML files.

A file is first decoded into a Config, a map[string]any with typed accessors
that fall back to defaults on missing keys or mismatched types. Settings are
then extracted section by section on top of Default and checked with
Settings.Validate.

	[voice]
	mode = "nlu"
	asset_dir = "sounds"
	gemini_model = "gemini-2.0-flash"

	[logging]
	level = "debug"
	format = "json"

Load does all three steps:

	s, err := config.Load("drivealert.toml")
	if err != nil {
	    log.Fatal(err)
	}
	logger := s.Logging.Logger(os.Stderr)

An empty voice.gemini_api_key is filled from the GEMINI_API_KEY environment
variable.
*/
package config
