// Package email delivers transactional messages.
//
// Two senders are provided: PostmarkSender talks to the Postmark API and
// DevSender writes each message to a local directory as an .html file plus a
// .json metadata file, which is handy when running the server locally.
package email
