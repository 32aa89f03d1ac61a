package analyzer

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-cfg/errors"
)

// Validate compiles data with wazero's interpreter and reports whether the
// module is well formed. Nothing is instantiated.
func Validate(ctx context.Context, data []byte, enableThreads bool) error {
	runtimeCfg := wazero.NewRuntimeConfigInterpreter()
	if enableThreads {
		runtimeCfg = runtimeCfg.WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	defer func() {
		if err := runtime.Close(ctx); err != nil {
			Logger().Warn("Validate: failed to close runtime", zap.Error(err))
		}
	}()

	compiled, err := runtime.CompileModule(ctx, data)
	if err != nil {
		return errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "module rejected by wazero")
	}
	return compiled.Close(ctx)
}
