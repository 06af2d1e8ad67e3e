package channels

// SendNonBlock delivers msg if the receiver has room and reports why not
// otherwise. Sending on a closed channel returns ErrChannelClosed instead of
// panicking.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}
