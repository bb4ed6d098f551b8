// Package watcher re-checks a cask descriptor whenever it changes on disk.
//
// The Watcher subscribes to the descriptor's directory through fsnotify so
// that editors which save by renaming a temporary file are still seen. Bursts
// of events are debounced; once the file settles it is decoded with
// cask.DecodeFile, audited with cask.Validate, and the Result is handed to the
// callback.
//
// Example usage:
//
//	w, err := watcher.New("Casks/clearvox.rb", func(r watcher.Result) {
//		if r.Err != nil {
//			log.Println(r.Err)
//		}
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher
