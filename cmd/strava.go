package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/tempo/internal/server"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// StravaAuth performs OAuth2 authentication flow for Strava.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) StravaAuth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = r.configPath
	}

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	if !config.HasStravaCredentials() {
		return fmt.Errorf("%w: Strava client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	stravaService, err := services.NewStravaService(config.Credentials.Strava)
	if err != nil {
		return fmt.Errorf("failed to create Strava service: %w", err)
	}

	token, err := r.doOAuth(config, stravaService)
	if err != nil {
		return err
	}

	if err := config.Credentials.Strava.Update(token); err != nil {
		return fmt.Errorf("failed to update strava configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.config = config

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: tempo strava sync\n")

	return nil
}

// StravaSync fetches runs over the report's listen date range, matches them
// to album records, and merges the result back into the report.
func (r *Runner) StravaSync(ctx context.Context, cmd *cli.Command) error {
	path := r.reportPath(cmd)
	dryRun := cmd.Bool("test")

	report, err := r.loadReport(path)
	if err != nil {
		return err
	}

	provider, err := r.activityProvider(cmd)
	if err != nil {
		return err
	}

	opts := tasks.SyncOptions{
		Tolerance:  time.Duration(cmd.Int("tolerance")) * time.Minute,
		BufferDays: int(cmd.Int("buffer-days")),
	}

	engine := tasks.NewReportEngine(provider, r.artists)
	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.logProgress(progress)

	updated, result, err := engine.SyncStrava(ctx, report, opts, progress)
	close(progress)
	<-done

	partial := errors.Is(err, shared.ErrIncompleteFetch)
	if err != nil && !partial {
		return fmt.Errorf("sync failed: %w", err)
	}
	if partial {
		r.logger.Warn("fetch ended early, matching against partial activity list", "error", err)
	}

	if strava, ok := provider.(*services.StravaService); ok {
		if usage := strava.Usage(); usage != "" {
			r.logger.Info("strava rate limit usage", "usage", usage)
		}
		if token := strava.Token(); token != nil && token.AccessToken != r.config.Credentials.Strava.AccessToken {
			if err := r.saveTokens(token); err != nil {
				r.logger.Warn("failed to persist refreshed tokens", "error", err)
			}
		}
	}

	r.writePlain("✓ Fetched %d activities (%d runs)\n", result.ActivitiesFetched, result.Runs)
	r.writePlain("  Matched: %d albums\n", result.Match.Matched)
	r.writePlain("  Unmatched: %d albums\n", result.Match.Unmatched)
	for id, albums := range result.Match.MultiAlbumRuns {
		r.writePlain("  Run %d matched %d albums\n", id, len(albums))
	}

	if dryRun {
		r.writePlain("Test mode: report not written\n")
		return nil
	}

	if err := r.saveReport(path, updated); err != nil {
		return err
	}
	if partial {
		r.writePlain("⚠ Partial sync written to %s; rerun to pick up missing activities\n", path)
	} else {
		r.writePlain("✓ Report updated at %s\n", path)
	}
	return nil
}

// activityProvider returns the injected provider or builds a Strava
// service from config credentials and command flags.
func (r *Runner) activityProvider(cmd *cli.Command) (services.ActivityProvider, error) {
	if r.activities != nil {
		return r.activities, nil
	}

	if !r.config.HasStravaCredentials() {
		return nil, fmt.Errorf("%w: run 'tempo strava auth' first", shared.ErrMissingCredentials)
	}

	opts := []services.StravaOption{
		services.WithMaxRequests(int(cmd.Int("max-requests"))),
		services.WithHTTPClient(r.httpClient),
	}
	if rps := r.config.Strava.RequestsPerSecond; rps > 0 {
		opts = append(opts, services.WithRequestRate(rps))
	}

	return services.NewStravaService(r.config.Credentials.Strava, opts...)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(config *shared.Config, strava *services.StravaService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	authURL := strava.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(strava.OAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Strava authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
