package domain

// Scaler is a fitted feature transform, such as a standardiser, applied to
// the raw vector before classification. Implementations are immutable after
// loading and safe for concurrent use.
type Scaler interface {
	Transform(v FeatureVector) (FeatureVector, error)
}

// Classifier is a fitted binary classifier over scaled vectors.
// Implementations are immutable after loading and safe for concurrent use.
type Classifier interface {
	Predict(v FeatureVector) (Label, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetArtifactsConfig() *ArtifactsConfig
	GetLoggingConfig() *LoggingConfig
	FieldSpecs() ([]FieldSpec, error)
	Validate() error
	IsProduction() bool
}
