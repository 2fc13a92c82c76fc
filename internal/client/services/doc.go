// Package services contains the application services of the GophStore
// client: sign-in, catalog browsing, checkout and the payment flow. The
// services combine the HTTP client with the local auth and cart stores;
// none of them keeps state that the backend owns.
package services
