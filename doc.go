// Package munin provides window iterators over slices and SessionMapping,
// a compact read-only map for sparse values over a fixed key universe.
//
// # Windows
//
// SlidingWindow and CenteringWindow return lazy sequences of windows that
// view the input slice without copying it:
//
//	windows, err := munin.CenteringWindow(samples, 4, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for w := range windows {
//	    fmt.Println(slices.Collect(w))
//	}
//
// # Session mappings
//
// A Session assigns each key of a fixed universe a slot index. Many
// mappings can share one session; each stores its values in a dense slice
// with one slot per index:
//
//	ks, err := munin.NewKeySpace([]string{"artist", "album", "genre", "year"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	song, err := munin.NewSessionMapping(ks, map[string]string{
//	    "artist": "Debussy",
//	    "genre":  "impressionism",
//	}, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	genre, _ := song.Get("genre")
//
// KeySpace is the bundled Session. It can be saved with WriteKeySpace and
// loaded with OpenKeySpace. BuildMappings builds many mappings over one
// session in parallel.
//
// # Package Structure
//
//   - Windows: window.go (SlidingWindow, CenteringWindow)
//   - Mappings: session.go (Session), mapping.go (SessionMapping),
//     mapping_options.go (MappingOption), batch.go (BuildMappings)
//   - Key spaces: keyspace.go (KeySpace), hasher.go (HasherID)
//   - Serialization: header.go (header, footer), keyspace_writer.go,
//     keyspace_file.go
//   - Platform: fallocate_*.go, prefault_*.go, fadvise_*.go
package munin
