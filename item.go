package prodcons

// Item identifies a unit of work. Values in [0, items) are real work;
// the value items itself is the termination sentinel.
type Item int
