// Package trash moves displaced directories into a recoverable holding area
// instead of deleting them. The layout follows the freedesktop.org trash
// specification (files/ plus info/*.trashinfo) so desktop file managers on
// Linux list and restore the entries.
package trash
