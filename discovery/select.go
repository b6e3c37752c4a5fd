package discovery

// SelectFirst returns the first candidate of the result. It performs no
// scoring, filtering or deduplication and relies on the registry run to
// emit candidates in relevance order.
func SelectFirst(result Result) (ServiceDescriptor, error) {
	if result.Empty() {
		return ServiceDescriptor{}, ErrNotFound
	}
	return result[0], nil
}
