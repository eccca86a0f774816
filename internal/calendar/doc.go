// Package calendar provides a read-only client for the Google Calendar API.
//
// The client lists the expanded, start-ordered events of one calendar over a
// time window and classifies API failures into the agenda error sentinels
// (authentication, rate limiting, missing calendar). It implements
// agenda.Lister.
//
// Example usage:
//
//	httpClient, err := google.NewHTTPClient(ctx, credentials)
//	if err != nil {
//	    return err
//	}
//	client, err := calendar.NewClient(ctx, httpClient)
//	if err != nil {
//	    return err
//	}
//
//	raws, err := client.ListEvents(ctx, "primary", time.Now(), time.Now().AddDate(0, 0, 7))
package calendar
