package adm

import "errors"

// Validate checks that every non-silent track UID resolves to a track or
// channel format and to a pack format, and that every track format is bound
// to a stream format. All problems are reported together.
func Validate(d *Document) error {
	var errs []error
	for _, uid := range d.TrackUIDs() {
		if uid.IsSilent() {
			continue
		}
		if uid.trackFormat == nil && uid.channelFormat == nil {
			errs = append(errs, Wrap(ErrUnresolvedReference, "validate", uid.id, "no track format or channel format"))
		}
		if uid.packFormat == nil {
			errs = append(errs, Wrap(ErrUnresolvedReference, "validate", uid.id, "no pack format"))
		}
	}
	for _, tf := range d.TrackFormats() {
		if tf.streamFormat == nil {
			errs = append(errs, Wrap(ErrUnresolvedReference, "validate", tf.id, "no stream format"))
		}
	}
	return errors.Join(errs...)
}
