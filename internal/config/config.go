package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The venue coordinates and
// attendance radius drive the geofence check; the deadline and minimum
// duration drive the scheduling core.
type Config struct {
    Env            string  // application environment (e.g. "dev", "prod")
    Port           string  // HTTP port to listen on
    DBUser         string  // database username
    DBPass         string  // database password (optional)
    DBHost         string  // database host address
    DBPort         string  // database port number
    DBName         string  // database name
    JWTSecret      string  // secret used to sign JWTs
    AccessTTLMin   int     // access token time-to-live in minutes
    RefreshTTLDays int     // refresh token time-to-live in days
    BcryptCost     int     // bcrypt cost for password hashing
    VenueLatitude  float64 // latitude of the library building
    VenueLongitude float64 // longitude of the library building
    RadiusMeters   float64 // attendance geofence radius in meters
    DeadlineMin    int     // minutes after booking start before auto-cancel
    SingleActive   bool    // enforce at most one active booking per member
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// The scheduling knobs fall back to the documented defaults.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        VenueLatitude:  envFloat("VENUE_LATITUDE", 25.261071),
        VenueLongitude: envFloat("VENUE_LONGITUDE", 82.983812),
        RadiusMeters:   envFloat("ATTENDANCE_RADIUS_METERS", 100),
        DeadlineMin:    envIntDef("ATTENDANCE_DEADLINE_MIN", 20),
        SingleActive:   getenv("BOOKING_SINGLE_ACTIVE", "true") == "true",
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// envFloat reads an optional float variable with a default.
func envFloat(key string, def float64) float64 {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    f, err := strconv.ParseFloat(v, 64)
    if err != nil {
        log.Fatalf("invalid float for %s: %q", key, v)
    }
    return f
}

// envIntDef reads an optional int variable with a default.
func envIntDef(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
