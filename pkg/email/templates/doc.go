// Package templates renders the contact notification sent to the site
// owner: subject, plain text and HTML. Labels come from the locale files
// under the mail.* keys; every submitted value is escaped in the HTML part.
package templates
