package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Values required for the server to function at all
// (database, signing secrets) are enforced at startup; credentials for
// optional integrations (GitHub sync, Google sign-in, Gemini, Cloudinary,
// the email relay) may be left empty, in which case the corresponding
// endpoint reports a configuration error instead of failing at boot.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    JWTSecret        string // secret used to sign user JWTs
    AdminJWTSecret   string // separate secret for admin JWTs
    UserTokenTTLDays int    // user token time-to-live in days
    AdminTokenTTLHrs int    // admin token time-to-live in hours
    BcryptCost       int    // bcrypt cost for password hashing

    AdminUsername        string // admin panel login name
    AdminInitialPassword string // seed password for the first admin login
    AdminEmail           string // destination for admin OTP / notification mail
    AdminDisplayName     string // name shown on admin replies

    FrontendURL string // public site origin, used in emailed links

    EmailAPIURL string // external email relay endpoint
    EmailAPIKey string // relay access key

    GoogleClientID     string // Google OAuth client id (ID token audience)
    GoogleClientSecret string // Google OAuth client secret

    GitHubToken     string // token for the contents API
    GitHubRepoOwner string // target repository owner
    GitHubRepoName  string // target repository name
    GitHubBranch    string // target branch

    GeminiAPIKey string // Gemini API key for the auto-responder
    GeminiModel  string // Gemini model name

    CloudinaryCloudName string // Cloudinary account cloud name
    CloudinaryAPIKey    string // Cloudinary API key
    CloudinaryAPISecret string // Cloudinary API secret
    CloudinaryFolder    string // optional upload folder

    VAPIDPublicKey string // public key handed to browsers for push subscriptions

    FileManagerRoot string // directory the file manager and GitHub sync operate on
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),
        Port:             must("APP_PORT"),
        DBUser:           must("DB_USER"),
        DBPass:           os.Getenv("DB_PASS"),
        DBHost:           must("DB_HOST"),
        DBPort:           must("DB_PORT"),
        DBName:           must("DB_NAME"),
        JWTSecret:        must("JWT_SECRET"),
        AdminJWTSecret:   must("ADMIN_JWT_SECRET"),
        UserTokenTTLDays: intDefault("USER_TOKEN_TTL_DAYS", 7),
        AdminTokenTTLHrs: intDefault("ADMIN_TOKEN_TTL_HOURS", 24),
        BcryptCost:       intDefault("BCRYPT_COST", 12),

        AdminUsername:        must("ADMIN_USERNAME"),
        AdminInitialPassword: os.Getenv("ADMIN_INITIAL_PASSWORD"),
        AdminEmail:           os.Getenv("ADMIN_EMAIL"),
        AdminDisplayName:     getenvDefault("ADMIN_DISPLAY_NAME", "Admin"),

        FrontendURL: must("FRONTEND_URL"),

        EmailAPIURL: os.Getenv("EMAIL_API_URL"),
        EmailAPIKey: os.Getenv("EMAIL_API_KEY"),

        GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
        GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

        GitHubToken:     os.Getenv("GITHUB_TOKEN"),
        GitHubRepoOwner: os.Getenv("GITHUB_REPO_OWNER"),
        GitHubRepoName:  os.Getenv("GITHUB_REPO_NAME"),
        GitHubBranch:    getenvDefault("GITHUB_BRANCH", "main"),

        GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
        GeminiModel:  getenvDefault("GEMINI_MODEL", "gemini-2.5-flash"),

        CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
        CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
        CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
        CloudinaryFolder:    os.Getenv("CLOUDINARY_FOLDER"),

        VAPIDPublicKey: os.Getenv("VAPID_PUBLIC_KEY"),

        FileManagerRoot: getenvDefault("FILE_MANAGER_ROOT", "."),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenvDefault returns the value of an optional environment variable or the
// provided default when it is unset.
func getenvDefault(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intDefault converts an optional environment variable into an integer,
// falling back to def when unset.  An unparsable value is fatal so that a
// typo does not silently change token lifetimes or hashing cost.
func intDefault(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
