package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/config"
	"go.uber.org/zap"
)

// CORS builds the cross-origin middleware from config. Origin policy:
// an explicit list is honored as-is; a "*" entry or an empty list in
// development allows any origin; an empty list outside development
// denies every cross-origin request.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowAny := func(r *http.Request, origin string) bool {
		return origin != ""
	}

	wildcard := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
			break
		}
	}

	switch {
	case wildcard:
		if environment != "development" && environment != "local" {
			logger.Warn("Wildcard CORS origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS restricted to configured origins",
			zap.Strings("origins", cfg.AllowedOrigins))
	case environment == "development" || environment == "local" || environment == "":
		options.AllowOriginFunc = allowAny
		logger.Info("CORS open to all origins for development")
	default:
		// Empty AllowedOrigins would default to "*" inside the library,
		// so denial has to go through AllowOriginFunc.
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return false
		}
		logger.Warn("No CORS origins configured, denying all cross-origin requests",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}
