package insights

import (
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/meghsharma/song-recommender/internal/dataset"
)

// DefaultMoodClusters is the number of mood groups computed for the
// dashboard.
const DefaultMoodClusters = 4

// moodFeatures are the audio features used for mood clustering.
var moodFeatures = []string{"energy", "valence", "danceability", "acousticness"}

// MoodCluster is a group of tracks with a similar feel, named after its
// centroid.
type MoodCluster struct {
	Name     string             `json:"name"`
	Size     int                `json:"size"`
	Centroid map[string]float64 `json:"centroid"`

	// SampleTracks holds up to five representative track names.
	SampleTracks []string `json:"sample_tracks"`
}

// trackObservation adapts a track to the clusters.Observation interface.
type trackObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// MoodClusters groups the catalog by audio-feature similarity using k-means.
// Returns nil when the catalog is smaller than k.
func MoodClusters(snap *dataset.Snapshot, k int) ([]MoodCluster, error) {
	if k <= 0 {
		k = DefaultMoodClusters
	}
	if snap.Len() < k {
		return nil, nil
	}

	observations := make(clusters.Observations, snap.Len())
	for i := range snap.Tracks {
		t := &snap.Tracks[i]
		observations[i] = trackObservation{
			index:  i,
			coords: clusters.Coordinates{t.Energy, t.Valence, t.Danceability, t.Acousticness},
		}
	}

	km := kmeans.New()
	result, err := km.Partition(observations, k)
	if err != nil {
		return nil, err
	}

	moods := make([]MoodCluster, 0, len(result))
	for _, cluster := range result {
		if len(cluster.Observations) == 0 {
			continue
		}

		centroid := make(map[string]float64, len(moodFeatures))
		for j, name := range moodFeatures {
			centroid[name] = cluster.Center[j]
		}

		mood := MoodCluster{
			Name:     moodName(centroid),
			Size:     len(cluster.Observations),
			Centroid: centroid,
		}
		for _, obs := range cluster.Observations {
			if len(mood.SampleTracks) == 5 {
				break
			}
			idx := obs.(trackObservation).index
			mood.SampleTracks = append(mood.SampleTracks, snap.Tracks[idx].Name)
		}
		moods = append(moods, mood)
	}

	sort.Slice(moods, func(a, b int) bool { return moods[a].Size > moods[b].Size })
	return moods, nil
}

// moodName derives a descriptive label from a cluster centroid.
func moodName(centroid map[string]float64) string {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	var name string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
	case highEnergy && !highValence:
		name = "Intense & Dark"
	case !highEnergy && highValence:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if centroid["acousticness"] > 0.6 {
		name += " (Acoustic)"
	}
	return name
}
