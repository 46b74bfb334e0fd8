package poster

import (
	"context"
	"log/slog"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// lookupTimeout bounds one artwork lookup so a slow Spotify API cannot
// stall a recommendation response.
const lookupTimeout = 10 * time.Second

// SpotifyResolver fetches album artwork from the Spotify track endpoint
// using the client-credentials flow. Token acquisition and refresh are
// handled by the oauth2 transport.
type SpotifyResolver struct {
	client *spotify.Client
	logger *slog.Logger
}

// NewSpotifyResolver builds a resolver from app credentials.
func NewSpotifyResolver(ctx context.Context, clientID, clientSecret string, logger *slog.Logger) *SpotifyResolver {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	httpClient := config.Client(ctx)
	httpClient.Timeout = lookupTimeout

	return &SpotifyResolver{
		client: spotify.New(httpClient),
		logger: logger,
	}
}

// PosterURL implements Resolver. It returns the first (largest) album image
// for the track, the no-image placeholder when the album has no artwork, and
// the error placeholder when the lookup fails.
func (r *SpotifyResolver) PosterURL(ctx context.Context, trackID string) string {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	track, err := r.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		r.logger.Warn("poster lookup failed", "track_id", trackID, "error", err)
		return PlaceholderError
	}

	if len(track.Album.Images) == 0 {
		return PlaceholderNoImage
	}
	return track.Album.Images[0].URL
}
