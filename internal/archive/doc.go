// Package archive arranges catalog tracks on a timeline by the date they
// were archived.
//
//	tl := archive.Build(view.Tracks, time.Local, time.Now())
//	for _, y := range tl.Years {
//	    fmt.Println(y.Year, tl.Count(y.Year))
//	}
package archive
