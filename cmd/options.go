package cmd

// rootOpts holds the options shared by every subcommand.
type rootOpts struct {
	// S3Bucket, when set, makes manifest references S3 object keys instead of
	// local file paths.
	S3Bucket string `mapstructure:"s3_bucket"`
}

type extendOpts struct {
	rootOpts `mapstructure:",squash"`

	// Extend specific options
	Input      []string `mapstructure:"input"`
	Output     string   `mapstructure:"output"`
	Label      string   `mapstructure:"label"`
	ID         string   `mapstructure:"id"`
	Annotation []string `mapstructure:"annotation"`
	View       []string `mapstructure:"view"`
	Metadata   string   `mapstructure:"metadata"`
	ContentIDs bool     `mapstructure:"content_ids"`
	FirstStage bool     `mapstructure:"first_stage"`
}

type infoOpts struct {
	rootOpts `mapstructure:",squash"`

	Input string `mapstructure:"input"`
}

type validateOpts struct {
	rootOpts `mapstructure:",squash"`

	Input string `mapstructure:"input"`
}

type graphOpts struct {
	rootOpts `mapstructure:",squash"`

	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
}
