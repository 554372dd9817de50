// Package factory instantiates pluggable modules (metrics sinks, ingestion
// sources) from configuration. A module is described by a type name and a
// raw settings map; the factory registered for the type decodes the map into
// its own struct with Decode.
//
//	reg := factory.NewRegistry[ingestion.JobCardSource]()
//	_ = reg.Register("sqlite", func(conf map[string]any) (ingestion.JobCardSource, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return sources.OpenSQLiteJobCardStore(c.Path)
//	})
package factory
