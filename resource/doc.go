// Package resource keeps host-held values under opaque handles.
//
// Hosts that cannot hold Go pointers, such as the interactive console,
// keep objects returned by the bridge in a Table and refer to them by
// handle in later calls:
//
//	table := resource.NewTable()
//	h, err := table.Insert("Samples.Person", person)
//
//	v, ok := table.Get(h)
//	v, ok = table.GetTyped(h, "Samples.Person")
//	v, ok = table.Remove(h)
//
// Handles are random UUID strings. Lookup accepts any unique prefix, so
// the first eight characters (Handle.Short) are usually enough.
//
// # Observers
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	        log.Printf("%s created", e.Handle.Short())
//	    case resource.EventDropped:
//	        log.Printf("%s dropped", e.Handle.Short())
//	    }
//	}))
//
// Values are not garbage collected while held; call Remove, Clear or
// Close.
package resource
