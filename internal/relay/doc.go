// Package relay provides the business boundary for forwarding incident
// events to PagerDuty. It defines the Service (synchronous delivery and
// record-keeping), the Store interface (persistence), and the domain models.
package relay
