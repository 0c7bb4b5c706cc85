package config

type ConnectionSelection struct {
	Name      string
	Overrides map[string]string
}

const (
	ConnectionFileEnvVar         = "METASYNC_CONNECTIONS_FILE"
	DefaultConnectionCatalogPath = "~/.metasync/configs/connections.yaml"
)

type ConnectionCatalog struct {
	Connections []Connection `yaml:"connections"`
	CurrentConn string       `yaml:"current-connection"`
}

// Connection binds one local store to one remote catalog. The connection
// name doubles as the scope key for cached reference data.
type Connection struct {
	Name        string            `yaml:"name"`
	Store       Store             `yaml:"store"`
	Catalog     *CatalogServer    `yaml:"catalog,omitempty"`
	SecretStore *SecretStore      `yaml:"secret-store,omitempty"`
	Preferences map[string]string `yaml:"preferences,omitempty"`
}

type Store struct {
	BaseDir string   `yaml:"base-dir"`
	Git     *GitSync `yaml:"git,omitempty"`
}

// GitSync mirrors the local store into a git repository. Remote settings
// are optional; without them commits stay local.
type GitSync struct {
	Remote *GitRemote `yaml:"remote,omitempty"`
}

type GitRemote struct {
	URL      string   `yaml:"url"`
	Branch   string   `yaml:"branch,omitempty"`
	AutoSync bool     `yaml:"auto-sync,omitempty"`
	Auth     *GitAuth `yaml:"auth,omitempty"`
}

type GitAuth struct {
	BasicAuth *BasicAuth     `yaml:"basic-auth,omitempty"`
	AccessKey *AccessKeyAuth `yaml:"access-key,omitempty"`
}

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type AccessKeyAuth struct {
	Token string `yaml:"token"`
}

type CatalogServer struct {
	HTTP *HTTPCatalog `yaml:"http,omitempty"`
}

type HTTPCatalog struct {
	BaseURL        string            `yaml:"base-url"`
	DefaultHeaders map[string]string `yaml:"default-headers,omitempty"`
	Auth           *CatalogAuth      `yaml:"auth,omitempty"`
	TLS            *TLS              `yaml:"tls,omitempty"`

	// RateLimit caps outgoing requests per second; zero disables the
	// limiter. RateBurst defaults to 1 when RateLimit is set.
	RateLimit float64 `yaml:"rate-limit,omitempty"`
	RateBurst int     `yaml:"rate-burst,omitempty"`
}

type CatalogAuth struct {
	BearerToken *BearerTokenAuth `yaml:"bearer-token,omitempty"`

	// SealedToken names an entry in the connection's secret store holding
	// the bearer token.
	SealedToken string `yaml:"sealed-token,omitempty"`
}

type BearerTokenAuth struct {
	Token string `yaml:"token"`
}

type SecretStore struct {
	File *FileSecretStore `yaml:"file,omitempty"`
}

type FileSecretStore struct {
	Path           string `yaml:"path"`
	Passphrase     string `yaml:"passphrase,omitempty"`
	PassphraseFile string `yaml:"passphrase-file,omitempty"`
	KDF            *KDF   `yaml:"kdf,omitempty"`
}

type KDF struct {
	Time    int `yaml:"time,omitempty"`
	Memory  int `yaml:"memory,omitempty"`
	Threads int `yaml:"threads,omitempty"`
}

type TLS struct {
	CACertFile         string `yaml:"ca-cert-file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify,omitempty"`
}
